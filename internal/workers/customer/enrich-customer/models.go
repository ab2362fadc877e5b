// internal/workers/customer/enrich-customer/models.go
package enrichcustomer

import "quotation-relay/internal/models"

// lookupResponse is the customer search envelope; only the first entry's
// attributes are used.
type lookupResponse struct {
	Data []struct {
		Attributes *lookupAttributes `json:"attributes"`
	} `json:"data"`
}

type lookupAttributes struct {
	GivenName          string `json:"givenName"`
	FamilyName         string `json:"familyName"`
	MobileNumber       string `json:"mobileNumber"`
	PhoneNumber        string `json:"phoneNumber"`
	Email              string `json:"email"`
	CustomerExternalID string `json:"customerExternalId"`
}

func (a *lookupAttributes) toModel() *models.CustomerAttributes {
	phone := a.MobileNumber
	if phone == "" {
		phone = a.PhoneNumber
	}
	return &models.CustomerAttributes{
		FirstName:          a.GivenName,
		LastName:           a.FamilyName,
		Phone:              phone,
		Email:              a.Email,
		ExternalCustomerID: a.CustomerExternalID,
	}
}

// Lookup outcome labels for metrics.
const (
	outcomeSuccess = "success"
)
