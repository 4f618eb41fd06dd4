package models

import "time"

// WorkSession is one continuous clocked-in interval
type WorkSession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId,omitempty"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

// Active reports whether the session has not ended
func (w WorkSession) Active() bool {
	return w.EndTime == nil
}
