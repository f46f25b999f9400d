package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	pgerrcode "github.com/jackc/pgerrcode"
	"github.com/jackc/pgtype"
	kpool "github.com/opst/mlpipe/pkg/conn/db/postgres/pool"
	"github.com/opst/mlpipe/pkg/domain"
	kdbartifact "github.com/opst/mlpipe/pkg/domain/artifact/db"
)

// schema of the metadata store.
//
// "blessed" and "component_unique_name" are projected from custom properties
// so that blessings can be looked up by index.
var schema = []string{
	`create table if not exists "artifact" (
		"artifact_id" bigserial primary key,
		"type_name" varchar not null,
		"uri" varchar not null default '',
		"span" bigint not null default 0,
		"properties" jsonb not null default '{}'::jsonb,
		"custom_properties" jsonb not null default '{}'::jsonb,
		"blessed" bigint generated always as (
			coalesce(("custom_properties"->'blessed'->>'int_value')::bigint, 0)
		) stored,
		"component_unique_name" varchar generated always as (
			coalesce("custom_properties"->'component_unique_name'->>'string_value', '')
		) stored
	)`,
	`create index if not exists "artifact_blessing"
		on "artifact" ("type_name", "blessed", "component_unique_name", "span" desc, "artifact_id")`,
}

type artifactPG struct { // implements kdbartifact.ArtifactInterface & kdbartifact.BlessingFinder
	pool kpool.Pool
}

var _ kdbartifact.ArtifactInterface = &artifactPG{}
var _ kdbartifact.BlessingFinder = &artifactPG{}

// args:
//   - pool: connection pool used to query/exec SQL
func New(pool kpool.Pool) *artifactPG {
	return &artifactPG{pool: pool}
}

// Migrate creates tables and indices if they are missing.
func (a *artifactPG) Migrate(ctx context.Context) error {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, ddl := range schema {
		if _, err := tx.Exec(ctx, ddl); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (a *artifactPG) GetAll(ctx context.Context) ([]domain.Artifact, error) {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return a.query(
		ctx, conn,
		`
		select
			"artifact_id", "type_name", "uri", "span", "properties", "custom_properties"
		from "artifact"
		order by "artifact_id"
		`,
	)
}

func (a *artifactPG) FindBlessed(ctx context.Context, componentUniqueName string) ([]domain.Artifact, error) {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return a.query(
		ctx, conn,
		`
		select
			"artifact_id", "type_name", "uri", "span", "properties", "custom_properties"
		from "artifact"
		where
			"type_name" = $1
			and "blessed" = 1
			and "component_unique_name" = $2
		order by "span" desc, "artifact_id"
		limit 1
		`,
		domain.TypeModelBlessing, componentUniqueName,
	)
}

func (a *artifactPG) query(ctx context.Context, conn kpool.Queryer, sql string, args ...any) ([]domain.Artifact, error) {
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, asDomainError(err)
	}
	defer rows.Close()

	result := []domain.Artifact{}
	for rows.Next() {
		var art domain.Artifact
		var props, customProps pgtype.JSONB
		if err := rows.Scan(
			&art.Id, &art.TypeName, &art.Uri, &art.Span, &props, &customProps,
		); err != nil {
			return nil, err
		}
		if err := props.AssignTo(&art.Properties); err != nil {
			return nil, fmt.Errorf("artifact %d: broken properties: %w", art.Id, err)
		}
		if err := customProps.AssignTo(&art.CustomProperties); err != nil {
			return nil, fmt.Errorf("artifact %d: broken custom properties: %w", art.Id, err)
		}
		result = append(result, art)
	}
	if err := rows.Err(); err != nil {
		return nil, asDomainError(err)
	}
	return result, nil
}

func (a *artifactPG) Put(ctx context.Context, artifact domain.Artifact) (int64, error) {
	artifact, err := artifact.Reconcile()
	if err != nil {
		return 0, err
	}
	props, err := json.Marshal(nonnil(artifact.Properties))
	if err != nil {
		return 0, err
	}
	customProps, err := json.Marshal(nonnil(artifact.CustomProperties))
	if err != nil {
		return 0, err
	}

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	var id int64
	if err := conn.QueryRow(
		ctx,
		`
		insert into "artifact"
			("type_name", "uri", "span", "properties", "custom_properties")
		values ($1, $2, $3, $4::jsonb, $5::jsonb)
		returning "artifact_id"
		`,
		artifact.TypeName, artifact.Uri, artifact.Span, string(props), string(customProps),
	).Scan(&id); err != nil {
		return 0, asDomainError(err)
	}
	return id, nil
}

func nonnil(p domain.Properties) domain.Properties {
	if p == nil {
		return domain.Properties{}
	}
	return p
}

func asDomainError(err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("%w: %w", kdbartifact.ErrMetadataNotInitialized, err)
	}
	return err
}
