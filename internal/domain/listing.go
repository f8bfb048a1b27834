package domain

import "time"

type RoomType string

const (
	RoomTypeLease RoomType = "LEASE"
	RoomTypeLodge RoomType = "LODGE"
)

type Discount struct {
	Weeks   int `json:"weeks" validate:"gte=1"`
	Percent int `json:"percent" validate:"gt=0,lte=100"`
}

type BusinessLicense struct {
	Number         string `json:"number" validate:"required"`
	CompanyName    string `json:"company_name" validate:"required"`
	Representative string `json:"representative" validate:"required"`
	Address        string `json:"address"`
}

// RoomListing is the host-owned listing edited through the creation wizard.
// It is submitted to the backend as a whole; there is no partial save.
type RoomListing struct {
	Title                string           `json:"title" validate:"required,max=100"`
	Description          string           `json:"description" validate:"max=5000"`
	RoomType             RoomType         `json:"room_type" validate:"required,oneof=LEASE LODGE"`
	FloorArea            float64          `json:"floor_area" validate:"gt=0"`
	RoomCount            int              `json:"room_count" validate:"gte=1"`
	BathroomCount        int              `json:"bathroom_count" validate:"gte=0"`
	MaxGuests            int              `json:"max_guests" validate:"gte=1"`
	Address              string           `json:"address" validate:"required"`
	AddressDetail        string           `json:"address_detail"`
	Latitude             float64          `json:"latitude" validate:"latitude"`
	Longitude            float64          `json:"longitude" validate:"longitude"`
	Facilities           map[string]bool  `json:"facilities"`
	AdditionalFacilities map[string]bool  `json:"additional_facilities"`
	WeekPrice            int64            `json:"week_price" validate:"gt=0"`
	Deposit              int64            `json:"deposit" validate:"gte=0"`
	MaintenanceFee       int64            `json:"maintenance_fee" validate:"gte=0"`
	MinStayWeeks         int              `json:"min_stay_weeks" validate:"gte=1"`
	Discounts            []Discount       `json:"discounts" validate:"dive"`
	BusinessLicense      *BusinessLicense `json:"business_license,omitempty"`
	HouseRules           string           `json:"house_rules"`
	CheckInTime          string           `json:"check_in_time" validate:"omitempty,datetime=15:04"`
	CheckOutTime         string           `json:"check_out_time" validate:"omitempty,datetime=15:04"`
	ImageURLs            []string         `json:"image_urls,omitempty"`
}

// WizardStep is one screen of the linear room creation wizard.
type WizardStep string

const (
	StepBasic      WizardStep = "basic"
	StepLocation   WizardStep = "location"
	StepFacilities WizardStep = "facilities"
	StepPricing    WizardStep = "pricing"
	StepDiscounts  WizardStep = "discounts"
	StepBusiness   WizardStep = "business"
	StepRules      WizardStep = "rules"
)

// WizardSteps lists the steps in the order the host walks through them.
var WizardSteps = []WizardStep{
	StepBasic,
	StepLocation,
	StepFacilities,
	StepPricing,
	StepDiscounts,
	StepBusiness,
	StepRules,
}

type DraftMode string

const (
	DraftModeInsert DraftMode = "insert"
	DraftModeUpdate DraftMode = "update"
)

// RoomDraft holds a listing between wizard steps. RoomID is zero in insert mode.
type RoomDraft struct {
	ID             string
	HostID         string
	Mode           DraftMode
	RoomID         int64
	Listing        RoomListing
	CompletedSteps []WizardStep
	Photos         []DraftPhoto
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (d *RoomDraft) HasCompleted(step WizardStep) bool {
	for _, s := range d.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}

// DraftPhoto is a listing image held as a local blob, whether it was uploaded
// by the host or downloaded from an existing listing.
type DraftPhoto struct {
	ID          string
	FileName    string
	ContentType string
	Position    int
	Data        []byte
	CreatedAt   time.Time
}
