package domain

type Event struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Location    string  `json:"location"`
	Capacity    *int    `json:"capacity"`
	RSVPCount   int     `json:"rsvp_count"`
	ImageURL    *string `json:"image_url"`
}

// Full reports whether the event has a capacity and reached it.
func (e *Event) Full() bool {
	return e.Capacity != nil && e.RSVPCount >= *e.Capacity
}

type RSVP struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}
