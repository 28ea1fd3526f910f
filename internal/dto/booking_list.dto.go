package dto

import "time"

type BookingListDTO struct {
	ID           uint      `json:"id"`
	Reference    string    `json:"reference"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
	Tight        bool      `json:"tight"`
	CustomerName string    `json:"customer_name"`
	PetName      string    `json:"pet_name,omitempty"`
	ServiceName  string    `json:"service_name"`
	LocationName string    `json:"location_name"`
	Price        float64   `json:"price"`
}
