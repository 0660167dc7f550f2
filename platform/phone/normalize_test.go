package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  not a number ", "not a number"},
		{"+31 6 12345678", "+31612345678"},
		{"(201) 555-0123", "+12015550123"},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.in); got != tc.want {
			t.Errorf("NormalizeE164(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFindLocatesNumbersInText(t *testing.T) {
	text := "Call me back on +44 20 7946 0958 after 5, or at (201) 555-0123."

	matches := Find(text, "")
	if len(matches) != 2 {
		t.Fatalf("Find() returned %d matches, want 2: %+v", len(matches), matches)
	}
	if got := text[matches[0].Start:matches[0].End]; got != "+44 20 7946 0958" {
		t.Errorf("first match = %q", got)
	}
	if matches[1].E164 != "+12015550123" {
		t.Errorf("second match E164 = %q, want +12015550123", matches[1].E164)
	}
}

func TestFindIgnoresShortDigitRuns(t *testing.T) {
	if matches := Find("The premium is 1200 per year, ref 12-34.", ""); len(matches) != 0 {
		t.Errorf("Find() = %+v, want no matches", matches)
	}
}

func TestFindRequiresValidNumbers(t *testing.T) {
	// 2500000 is possible as a US local number but not valid without an area code.
	if matches := Find("Contribution 2500000 per month", ""); len(matches) != 0 {
		t.Errorf("Find() = %+v, want no matches", matches)
	}
}

func TestFindRejectsDigitsGroupedUnlikeAPhoneNumber(t *testing.T) {
	cases := []string{
		"Policy 2024-0001-17 renewed",
		"Account 20.24.00.01.17",
	}
	for _, text := range cases {
		if matches := Find(text, ""); len(matches) != 0 {
			t.Errorf("Find(%q) = %+v, want no matches", text, matches)
		}
	}

	matches := Find("Ring 2024000117 or 1-202-400-0117", "")
	if len(matches) != 2 {
		t.Fatalf("Find() returned %d matches, want 2: %+v", len(matches), matches)
	}
	for _, m := range matches {
		if m.E164 != "+12024000117" {
			t.Errorf("E164 = %q, want +12024000117", m.E164)
		}
	}
}

func TestFindUsesRegionForNationalNumbers(t *testing.T) {
	text := "Office line 020 7946 0958."

	if matches := Find(text, "US"); len(matches) != 0 {
		t.Errorf("Find(US) = %+v, want no matches", matches)
	}
	matches := Find(text, "GB")
	if len(matches) != 1 || matches[0].E164 != "+442079460958" {
		t.Fatalf("Find(GB) = %+v, want +442079460958", matches)
	}
	if got := text[matches[0].Start:matches[0].End]; got != "020 7946 0958" {
		t.Errorf("match = %q", got)
	}
}

func TestSupportedRegion(t *testing.T) {
	for _, region := range []string{"US", "gb", "ID"} {
		if !SupportedRegion(region) {
			t.Errorf("SupportedRegion(%q) = false", region)
		}
	}
	if SupportedRegion("ZZ") {
		t.Error("SupportedRegion(ZZ) = true")
	}
}
