package models

import (
	"fmt"
	"io"
	"time"
)

// Photo is a captured defect image held by the storage layer for the
// duration of a wizard session.
type Photo struct {
	Reader     io.ReadSeeker
	SessionId  string
	SequenceId int
	CapturedAt time.Time
}

func (p Photo) Id() string {
	return fmt.Sprintf("%s_%d", p.SessionId, p.SequenceId)
}
