package schema

import "testing"

func TestPortCodeValidationMatchesPortCodeLookup(t *testing.T) {
	cases := []struct {
		location string
		valid    bool
	}{
		{location: "CNSHA", valid: true},
		{location: "USLAX", valid: true},
		{location: "DE150", valid: true},
		{location: "cnsha", valid: false},
		{location: "CNSH", valid: false},
		{location: "CNSHAX", valid: false},
		{location: "Shanghai warehouse district", valid: false},
	}

	for _, tc := range cases {
		params := QueryParamsForBreakdown{
			Origin:        tc.location,
			Destination:   "USLAX",
			ContainerType: "40HC",
			Quantity:      1,
		}
		err := RequestValidate.Struct(params)
		if tc.valid && err != nil {
			t.Errorf("Expected %q to validate as a port code: %v", tc.location, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("Expected %q rejected as a port code", tc.location)
		}

		request := QuoteRequest{Origin: tc.location}
		if _, ok := request.OriginPortCode(); ok != tc.valid {
			t.Errorf("Expected OriginPortCode(%q) = %v, validation and lookup must agree", tc.location, tc.valid)
		}
	}
}
