package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saaga0h/daybreak/pkg/config"
	"github.com/saaga0h/daybreak/pkg/mqtt"
	"github.com/saaga0h/daybreak/pkg/postgres"
)

// request is the envelope for task operations arriving over MQTT.
// RequestID correlates the response topic; the remaining fields are
// per-operation.
type request struct {
	RequestID string       `json:"request_id"`
	TaskID    string       `json:"task_id,omitempty"`
	Title     string       `json:"title,omitempty"`
	Notes     string       `json:"notes,omitempty"`
	Filter    string       `json:"filter,omitempty"`
	Position  *int         `json:"position,omitempty"`
	Update    UpdateParams `json:"update,omitempty"`
}

// response is the envelope published to the correlated response topic
type response struct {
	RequestID string `json:"request_id"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Task      *Task  `json:"task,omitempty"`
	Tasks     []Task `json:"tasks,omitempty"`
}

// changeNotice is the retained change notification UI collaborators
// watch to refresh their lists
type changeNotice struct {
	Operation string `json:"operation"`
	ChangedAt string `json:"changed_at"`
}

// Agent serves task CRUD over MQTT request topics backed by Postgres
type Agent struct {
	mqtt    mqtt.Client
	db      postgres.Client
	storage *Storage
	cfg     *config.Config
	logger  *slog.Logger
}

// NewAgent creates a new task agent
func NewAgent(mqttClient mqtt.Client, db postgres.Client, cfg *config.Config, logger *slog.Logger) *Agent {
	return &Agent{
		mqtt:    mqttClient,
		db:      db,
		storage: NewStorage(db, logger),
		cfg:     cfg,
		logger:  logger,
	}
}

// Start starts the task agent and begins processing
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info("Starting task agent", "service_name", a.cfg.ServiceName)

	// Connect to MQTT broker
	if err := a.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	// Connect to Postgres and make sure the schema exists
	if err := a.db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if err := a.storage.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure tasks schema: %w", err)
	}

	// Subscribe to task requests
	if err := a.mqtt.Subscribe(mqtt.TopicTaskRequests, 0, a.handleRequest); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", mqtt.TopicTaskRequests, err)
	}

	a.logger.Info("Task agent started and ready")

	// Block until context is cancelled
	<-ctx.Done()
	a.logger.Info("Task agent stopping")

	return nil
}

// Stop gracefully stops the task agent
func (a *Agent) Stop() error {
	a.logger.Info("Stopping task agent")

	a.mqtt.Disconnect()

	if err := a.db.Disconnect(); err != nil {
		a.logger.Error("Error closing Postgres connection", "error", err)
		return err
	}

	a.logger.Info("Task agent stopped")
	return nil
}

// handleRequest dispatches an incoming task operation by topic suffix
func (a *Agent) handleRequest(msg mqtt.Message) {
	topic := msg.Topic()

	// Extract operation from topic: taskboard/tasks/request/{operation}
	parts := strings.Split(topic, "/")
	if len(parts) != 4 {
		a.logger.Warn("Invalid task request topic format", "topic", topic)
		return
	}
	operation := parts[3]

	var req request
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		a.logger.Warn("Invalid task request payload", "topic", topic, "error", err)
		return
	}
	if req.RequestID == "" {
		a.logger.Warn("Task request without request_id", "operation", operation)
		return
	}

	ctx := context.Background()
	resp := a.execute(ctx, operation, req)

	if err := a.mqtt.PublishJSON(mqtt.TaskResponseTopic(req.RequestID), 0, false, resp); err != nil {
		a.logger.Warn("Failed to publish task response", "request_id", req.RequestID, "error", err)
	}

	if resp.OK && operation != "get" && operation != "list" {
		a.publishChanged(operation)
	}
}

func (a *Agent) execute(ctx context.Context, operation string, req request) response {
	resp := response{RequestID: req.RequestID}

	fail := func(err error) response {
		a.logger.Warn("Task operation failed", "operation", operation, "error", err)
		resp.OK = false
		resp.Error = err.Error()
		return resp
	}

	switch operation {
	case "create":
		if req.Title == "" {
			return fail(fmt.Errorf("title is required"))
		}
		task, err := a.storage.Create(ctx, req.Title, req.Notes)
		if err != nil {
			return fail(err)
		}
		resp.OK = true
		resp.Task = task

	case "get":
		id, err := uuid.Parse(req.TaskID)
		if err != nil {
			return fail(fmt.Errorf("invalid task_id: %w", err))
		}
		task, err := a.storage.Get(ctx, id)
		if err != nil {
			return fail(err)
		}
		resp.OK = true
		resp.Task = task

	case "list":
		filter := Filter(req.Filter)
		if req.Filter == "" {
			filter = FilterAll
		}
		if !filter.Valid() {
			return fail(fmt.Errorf("invalid filter: %s", req.Filter))
		}
		list, err := a.storage.List(ctx, filter)
		if err != nil {
			return fail(err)
		}
		resp.OK = true
		resp.Tasks = list

	case "update":
		id, err := uuid.Parse(req.TaskID)
		if err != nil {
			return fail(fmt.Errorf("invalid task_id: %w", err))
		}
		task, err := a.storage.Update(ctx, id, req.Update)
		if err != nil {
			return fail(err)
		}
		resp.OK = true
		resp.Task = task

	case "move":
		id, err := uuid.Parse(req.TaskID)
		if err != nil {
			return fail(fmt.Errorf("invalid task_id: %w", err))
		}
		if req.Position == nil {
			return fail(fmt.Errorf("position is required"))
		}
		if err := a.storage.Move(ctx, id, *req.Position); err != nil {
			return fail(err)
		}
		resp.OK = true

	case "delete":
		id, err := uuid.Parse(req.TaskID)
		if err != nil {
			return fail(fmt.Errorf("invalid task_id: %w", err))
		}
		if err := a.storage.Delete(ctx, id); err != nil {
			return fail(err)
		}
		resp.OK = true

	default:
		return fail(fmt.Errorf("unknown operation: %s", operation))
	}

	return resp
}

func (a *Agent) publishChanged(operation string) {
	notice := changeNotice{
		Operation: operation,
		ChangedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := a.mqtt.PublishJSON(mqtt.TopicTasksChanged, 0, true, notice); err != nil {
		a.logger.Warn("Failed to publish task change notice", "error", err)
	}
}
