package dto

type UpdateProfileRequest struct {
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

type UpdatePlanRequest struct {
	Plan string `json:"plan"`
}

type QuotaResponse struct {
	Remaining int `json:"remaining"`
}
