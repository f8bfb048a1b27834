package listing

import "github.com/ddj82/roomi/internal/domain"

// stepFields maps each step to the listing fields it edits, by JSON key and
// by struct field name for partial validation.
var stepFields = map[domain.WizardStep]map[string]string{
	domain.StepBasic: {
		"title":          "Title",
		"description":    "Description",
		"room_type":      "RoomType",
		"floor_area":     "FloorArea",
		"room_count":     "RoomCount",
		"bathroom_count": "BathroomCount",
		"max_guests":     "MaxGuests",
	},
	domain.StepLocation: {
		"address":        "Address",
		"address_detail": "AddressDetail",
		"latitude":       "Latitude",
		"longitude":      "Longitude",
	},
	domain.StepFacilities: {
		"facilities":            "Facilities",
		"additional_facilities": "AdditionalFacilities",
	},
	domain.StepPricing: {
		"week_price":      "WeekPrice",
		"deposit":         "Deposit",
		"maintenance_fee": "MaintenanceFee",
		"min_stay_weeks":  "MinStayWeeks",
	},
	domain.StepDiscounts: {
		"discounts": "Discounts",
	},
	domain.StepBusiness: {
		"business_license": "BusinessLicense",
	},
	domain.StepRules: {
		"house_rules":    "HouseRules",
		"check_in_time":  "CheckInTime",
		"check_out_time": "CheckOutTime",
	},
}

func stepIndex(step domain.WizardStep) int {
	for i, s := range domain.WizardSteps {
		if s == step {
			return i
		}
	}
	return -1
}

func structFields(step domain.WizardStep) []string {
	fields := make([]string, 0, len(stepFields[step]))
	for _, name := range stepFields[step] {
		fields = append(fields, name)
	}
	return fields
}

func allSteps() []domain.WizardStep {
	return append([]domain.WizardStep(nil), domain.WizardSteps...)
}
