package main

// postOffice mirrors the upstream field names.
type postOffice struct {
	Name           string `json:"Name"`
	BranchType     string `json:"BranchType"`
	DeliveryStatus string `json:"DeliveryStatus"`
	District       string `json:"District"`
	State          string `json:"State"`
	Country        string `json:"Country"`
	Pincode        string `json:"Pincode"`
}

type record struct {
	Message    string       `json:"Message"`
	Status     string       `json:"Status"`
	PostOffice []postOffice `json:"PostOffice"`
}

// Magic pincodes that make the mock misbehave in a controlled way.
const (
	pincodeUnavailable = "999503" // 503 with a parseable upstream body
	pincodeBadGateway  = "999502" // 502 with an HTML body
	pincodeGarbage     = "999200" // 200 with a body that is not JSON
	pincodeEmptyArray  = "999204" // 200 with []
	pincodeSlow        = "999408" // answers after slowDelay
)

func office(name, branch, delivery, district, state, pin string) postOffice {
	return postOffice{
		Name:           name,
		BranchType:     branch,
		DeliveryStatus: delivery,
		District:       district,
		State:          state,
		Country:        "India",
		Pincode:        pin,
	}
}

var fixtures = map[string][]postOffice{
	"560001": {
		office("Bangalore G.P.O.", "Head Post Office", "Non-Delivery", "Bangalore", "Karnataka", "560001"),
		office("Rajbhavan (Bangalore)", "Sub Post Office", "Delivery", "Bangalore", "Karnataka", "560001"),
		office("Vidhana Soudha", "Sub Post Office", "Non-Delivery", "Bangalore", "Karnataka", "560001"),
	},
	"110001": {
		office("Baroda House", "Sub Post Office", "Non-Delivery", "Central Delhi", "Delhi", "110001"),
		office("Connaught Place", "Sub Post Office", "Delivery", "New Delhi", "Delhi", "110001"),
		office("Parliament House", "Sub Post Office", "Non-Delivery", "New Delhi", "Delhi", "110001"),
	},
	"400001": {
		office("Mumbai G.P.O.", "Head Post Office", "Delivery", "Mumbai", "Maharashtra", "400001"),
	},
	"700001": {
		office("Calcutta G.P.O.", "Head Post Office", "Delivery", "Kolkata", "West Bengal", "700001"),
		office("Dalhousie Square", "Sub Post Office", "Non-Delivery", "Kolkata", "West Bengal", "700001"),
	},
}
