package captioner

// CaptionPrompt describes the vehicle and the desired tone. The service
// decides what to do with it; nothing here is interpreted locally.
type CaptionPrompt struct {
	DealershipName string   `json:"dealershipName"`
	VehicleYear    int      `json:"vehicleYear,omitempty"`
	VehicleMake    string   `json:"vehicleMake,omitempty"`
	VehicleModel   string   `json:"vehicleModel,omitempty"`
	Highlights     []string `json:"highlights,omitempty"`
	Tone           string   `json:"tone,omitempty"`
}

type GenerateCaptionResponse struct {
	Caption string `json:"caption"`
}
