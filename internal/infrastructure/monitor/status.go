package monitor

import "time"

type Status struct {
	PostgreSQL   bool      `json:"postgresql"`
	Redis        bool      `json:"redis"`
	Activity     bool      `json:"activity"`
	ActivitySize int       `json:"activity_size"`
	LastCheck    time.Time `json:"last_check"`
}
