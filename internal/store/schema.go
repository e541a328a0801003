package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/vibedove/vibedove/internal/domain"
)

//go:embed board.schema.json
var boardSchemaJSON []byte

// ErrUnsupportedVersion is returned for board documents written by a newer build.
var ErrUnsupportedVersion = errors.New("unsupported board version")

var (
	compileOnce sync.Once
	boardSchema *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(boardSchemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal board schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("board.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("add board schema: %w", err)
			return
		}
		boardSchema, compileErr = c.Compile("board.schema.json")
	})
	return boardSchema, compileErr
}

// Migration upgrades a raw board document by one schema version.
type Migration struct {
	FromVersion int
	ToVersion   int
	Migrate     func(data map[string]any) (map[string]any, error)
}

// migrations is the list of migrations in order
var migrations = []Migration{
	// 0 -> 1: documents without a version field
	{
		FromVersion: 0,
		ToVersion:   1,
		Migrate: func(data map[string]any) (map[string]any, error) {
			if _, ok := data["tasks"]; !ok {
				data["tasks"] = []any{}
			}
			data["version"] = json.Number("1")
			return data, nil
		},
	},
}

// ApplyMigrations applies all migrations from the given version to domain.BoardVersion.
func ApplyMigrations(data map[string]any, fromVersion int) (map[string]any, error) {
	for _, migration := range migrations {
		if migration.FromVersion == fromVersion {
			var err error
			data, err = migration.Migrate(data)
			if err != nil {
				return nil, fmt.Errorf("migration %d -> %d failed: %w",
					migration.FromVersion, migration.ToVersion, err)
			}
			fromVersion = migration.ToVersion
		}
	}

	if fromVersion < domain.BoardVersion {
		return nil, fmt.Errorf("no migration path from version %d to %d", fromVersion, domain.BoardVersion)
	}

	return data, nil
}

// Decode parses, migrates and validates a board document.
func Decode(data []byte) (domain.Board, error) {
	raw, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return domain.Board{}, fmt.Errorf("failed to parse board JSON: %w", err)
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return domain.Board{}, errors.New("board document is not a JSON object")
	}

	version := 0
	if v, ok := doc["version"].(json.Number); ok {
		n, err := v.Int64()
		if err != nil {
			return domain.Board{}, fmt.Errorf("invalid board version %q", v)
		}
		version = int(n)
	}

	if version > domain.BoardVersion {
		return domain.Board{}, fmt.Errorf("%w: version %d is newer than supported version %d",
			ErrUnsupportedVersion, version, domain.BoardVersion)
	}
	if version < domain.BoardVersion {
		if doc, err = ApplyMigrations(doc, version); err != nil {
			return domain.Board{}, fmt.Errorf("failed to migrate board: %w", err)
		}
	}

	sch, err := schema()
	if err != nil {
		return domain.Board{}, err
	}
	if err := sch.Validate(doc); err != nil {
		return domain.Board{}, fmt.Errorf("board does not match schema: %w", err)
	}

	migrated, err := json.Marshal(doc)
	if err != nil {
		return domain.Board{}, fmt.Errorf("failed to marshal migrated board: %w", err)
	}

	var board domain.Board
	if err := json.Unmarshal(migrated, &board); err != nil {
		return domain.Board{}, fmt.Errorf("failed to decode board: %w", err)
	}
	if board.Tasks == nil {
		board.Tasks = []domain.Task{}
	}
	return board, nil
}

// Encode serializes a board as pretty-printed JSON with a trailing newline.
func Encode(board domain.Board) ([]byte, error) {
	if board.Tasks == nil {
		board.Tasks = []domain.Task{}
	}
	if board.Version == 0 {
		board.Version = domain.BoardVersion
	}
	data, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
