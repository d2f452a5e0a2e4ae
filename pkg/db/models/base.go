package models

import (
	"github.com/google/uuid"
)

// assignID fills a zero primary key. Postgres also defaults ids with
// gen_random_uuid() in the migrations; SQLite relies on this hook.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
