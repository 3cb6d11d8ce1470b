package profile_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/wallaby-market/wallaby/internal/profile"
)

func TestClassification_zeroValueUnset(t *testing.T) {
	var c profile.Classification
	if c.IsSet() {
		t.Error("zero classification must be unset")
	}
	if _, ok := c.UserType(); ok {
		t.Error("unset classification must not report a user type")
	}
	if _, ok := c.BusinessFlag(); ok {
		t.Error("unset classification must not report a business flag")
	}
}

func TestClassification_pairs(t *testing.T) {
	cust := profile.AsCustomer()
	ut, _ := cust.UserType()
	biz, _ := cust.BusinessFlag()
	if ut != profile.UserTypeCustomer || biz {
		t.Errorf("customer pair wrong: %v/%v", ut, biz)
	}

	seller := profile.AsBusiness()
	ut, _ = seller.UserType()
	biz, _ = seller.BusinessFlag()
	if ut != profile.UserTypeBusiness || !biz {
		t.Errorf("business pair wrong: %v/%v", ut, biz)
	}
}

func TestClassificationFromFields(t *testing.T) {
	str := func(s string) *string { return &s }
	boolp := func(b bool) *bool { return &b }

	cases := []struct {
		name       string
		userType   *string
		isBusiness *bool
		want       profile.Classification
		wantErr    bool
	}{
		{"both nil", nil, nil, profile.Unclassified(), false},
		{"customer", str("customer"), boolp(false), profile.AsCustomer(), false},
		{"business", str("business"), boolp(true), profile.AsBusiness(), false},
		{"type without flag", str("customer"), nil, profile.Classification{}, true},
		{"flag without type", nil, boolp(true), profile.Classification{}, true},
		{"customer flagged business", str("customer"), boolp(true), profile.Classification{}, true},
		{"business not flagged", str("business"), boolp(false), profile.Classification{}, true},
		{"unknown type", str("admin"), boolp(false), profile.Classification{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := profile.ClassificationFromFields(tc.userType, tc.isBusiness)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestProfileJSON_unclassifiedNulls(t *testing.T) {
	p := profile.Profile{OwnerID: uuid.New(), FirstName: "Asha"}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"user_type":null`) || !strings.Contains(s, `"is_business":null`) {
		t.Errorf("unclassified profile should carry both fields as null: %s", s)
	}

	var back profile.Profile
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Classification.IsSet() {
		t.Error("round trip should stay unclassified")
	}
}

func TestProfileJSON_classifiedPair(t *testing.T) {
	p := profile.Profile{OwnerID: uuid.New(), Classification: profile.AsBusiness()}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"user_type":"business"`) || !strings.Contains(s, `"is_business":true`) {
		t.Errorf("business profile should carry both wire fields: %s", s)
	}

	var back profile.Profile
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Classification != profile.AsBusiness() {
		t.Error("round trip lost the classification")
	}
}

func TestProfileJSON_rejectsHalfSetPair(t *testing.T) {
	var p profile.Profile
	err := json.Unmarshal([]byte(`{"owner_id":"`+uuid.NewString()+`","user_type":"customer"}`), &p)
	if err == nil {
		t.Error("a record with only user_type set must be rejected")
	}
}
