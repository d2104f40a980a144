package domain

const TravelDateLayout = "2006-01-02"

type Ticket struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	TrainID     string `json:"trainId"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	TravelDate  string `json:"travelDate"`
	SeatRow     int    `json:"seatRow"`
	SeatCol     int    `json:"seatCol"`
}
