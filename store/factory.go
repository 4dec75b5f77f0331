package store

import (
	"context"
	"fmt"

	"answerking/domain"
)

// Kinds accepted by NewStore.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMySQL  = "mysql"
)

// NewStore constructs a domain.Store by kind: "memory", "file", "sqlite" or
// "mysql". The file store reads path; the SQL stores connect to dsn. For
// sqlite an empty dsn falls back to path.
func NewStore(ctx context.Context, kind, path, dsn string) (domain.Store, error) {
	switch kind {
	case KindMemory, "mem":
		return NewInMemoryStore(), nil
	case KindFile:
		if path == "" {
			return nil, fmt.Errorf("file path required for file store")
		}
		return NewFileStore(path)
	case KindSQLite:
		if dsn == "" {
			dsn = path
		}
		if dsn == "" {
			return nil, fmt.Errorf("dsn or file path required for sqlite store")
		}
		return OpenSQLStore(ctx, DialectSQLite, dsn)
	case KindMySQL:
		if dsn == "" {
			return nil, fmt.Errorf("dsn required for mysql store")
		}
		return OpenSQLStore(ctx, DialectMySQL, dsn)
	default:
		return nil, fmt.Errorf("unknown store kind: %s", kind)
	}
}
