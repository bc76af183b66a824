package model

type DashboardStats struct {
	TotalEvents       int `json:"total_events"`
	TotalParticipants int `json:"total_participants"`
	UpcomingEvents    int `json:"upcoming_events"`
}

type Dashboard struct {
	CreatedEvents []*Event       `json:"created_events"`
	JoinedEvents  []*Event       `json:"joined_events"`
	Stats         DashboardStats `json:"stats"`
}
