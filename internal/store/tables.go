package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the repositories.
const (
	tableKV = "kv_entries"
	colKey  = "key"
	colVal  = "value"
	colMod  = "updated_at"

	tableCache   = "cache_entries"
	colPayload   = "payload"
	colFetchedAt = "fetched_at"

	tableEvents  = "request_events"
	colID        = "id"
	colRequestID = "request_id"
	colMethod    = "method"
	colPath      = "path"
	colStatus    = "status"
	colAttempt   = "attempt"
	colLatency   = "latency_ms"
	colSuccess   = "success"
	colErrMsg    = "error_message"
	colTimestamp = "timestamp"
)

var (
	// KVColumns holds the columns for the "kv_entries" table.
	KVColumns = []*schema.Column{
		{Name: colKey, Type: field.TypeString, Unique: true},
		{Name: colVal, Type: field.TypeString, Size: 2147483647},
		{Name: colMod, Type: field.TypeInt64, Comment: "Unix millis of the last write"},
	}
	// KVTable holds the schema information for the "kv_entries" table.
	KVTable = &schema.Table{
		Name:       tableKV,
		Columns:    KVColumns,
		PrimaryKey: []*schema.Column{KVColumns[0]},
	}

	// CacheColumns holds the columns for the "cache_entries" table.
	CacheColumns = []*schema.Column{
		{Name: colKey, Type: field.TypeString, Unique: true},
		{Name: colPayload, Type: field.TypeString, Size: 2147483647},
		{Name: colFetchedAt, Type: field.TypeInt64, Comment: "Unix millis when the payload was fetched"},
	}
	// CacheTable holds the schema information for the "cache_entries" table.
	CacheTable = &schema.Table{
		Name:       tableCache,
		Columns:    CacheColumns,
		PrimaryKey: []*schema.Column{CacheColumns[0]},
	}

	// EventColumns holds the columns for the "request_events" table.
	EventColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colRequestID, Type: field.TypeString},
		{Name: colMethod, Type: field.TypeString},
		{Name: colPath, Type: field.TypeString},
		{Name: colStatus, Type: field.TypeInt, Default: 0},
		{Name: colAttempt, Type: field.TypeInt, Default: 1},
		{Name: colLatency, Type: field.TypeInt64, Default: 0},
		{Name: colSuccess, Type: field.TypeBool, Default: false},
		{Name: colErrMsg, Type: field.TypeString, Default: ""},
		{Name: colTimestamp, Type: field.TypeInt64, Comment: "Unix millis when the attempt started"},
	}
	// EventTable holds the schema information for the "request_events" table.
	EventTable = &schema.Table{
		Name:       tableEvents,
		Columns:    EventColumns,
		PrimaryKey: []*schema.Column{EventColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "requestevent_request_id",
				Unique:  false,
				Columns: []*schema.Column{EventColumns[1]},
			},
			{
				Name:    "requestevent_timestamp",
				Unique:  false,
				Columns: []*schema.Column{EventColumns[9]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		KVTable,
		CacheTable,
		EventTable,
	}
)
