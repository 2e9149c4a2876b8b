package database

import (
	"context"
	"database/sql"
	"fmt"
)

// QueueNameRow pairs a queue's technical name with its display name.
type QueueNameRow struct {
	Name        string
	DisplayName string
}

// AvailableQueues discovers the queues present in the event log. Queues
// are not provisioned anywhere in this system, so the log is the source
// of truth; display names come from the optional queue_names mapping.
func (db *DB) AvailableQueues(ctx context.Context) ([]QueueNameRow, error) {
	query := `
		SELECT DISTINCT q.queuename, n.display_name
		FROM queue_log q
		LEFT JOIN queue_names n ON n.queue_name = q.queuename
		WHERE q.queuename <> '' AND q.queuename <> 'NONE'
		ORDER BY q.queuename
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query available queues: %w", err)
	}
	defer rows.Close()

	var queues []QueueNameRow
	for rows.Next() {
		var row QueueNameRow
		var display sql.NullString
		if err := rows.Scan(&row.Name, &display); err != nil {
			return nil, fmt.Errorf("scan queue name: %w", err)
		}
		if display.Valid && display.String != "" {
			row.DisplayName = display.String
		} else {
			row.DisplayName = row.Name
		}
		queues = append(queues, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return queues, nil
}

// QueueDisplayName resolves a single queue's display name. Missing
// mappings are not an error; callers fall back to the technical name.
func (db *DB) QueueDisplayName(ctx context.Context, queue string) (string, error) {
	query := `
		SELECT display_name
		FROM queue_names
		WHERE queue_name = $1
	`

	var name string
	err := db.QueryRowContext(ctx, query, queue).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query queue display name: %w", err)
	}

	return name, nil
}
