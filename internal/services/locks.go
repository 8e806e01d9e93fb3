package services

import (
	"hash/fnv"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// advisoryXactLock takes a transaction-scoped postgres advisory lock keyed
// by (namespace, id). Released automatically at commit or rollback.
func advisoryXactLock(tx *gorm.DB, namespace string, id uuid.UUID) error {
	if tx == nil || namespace == "" || id == uuid.Nil {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(?)", advisoryKey64(namespace, id)).Error
}

func advisoryKey64(namespace string, id uuid.UUID) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(namespace))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(id.String()))
	return int64(h.Sum64())
}
