package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"netclass-console/internal/model"
	"netclass-console/internal/repository"
	"netclass-console/pkg/errors"
	"netclass-console/pkg/validation"
)

// CommandDispatcher delivers a committed remote command to the PC agent.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd model.RemoteCommand) error
}

// CommandResult reports the outcome of a remote command.
type CommandResult struct {
	Message    string `json:"message"`
	Dispatched bool   `json:"dispatched"`
}

// CommandService runs shutdowns and admin remote commands
type CommandService struct {
	store      repository.Store
	dispatcher CommandDispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewCommandService creates a new command service. A nil dispatcher records
// commands without forwarding them.
func NewCommandService(store repository.Store, dispatcher CommandDispatcher, logger *zap.Logger) *CommandService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandService{store: store, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// RemoteCommand executes an admin command against a PC in one transaction.
// Logoff and Restart run the shutdown procedure and append an audit row
// carrying the procedure's message; any other command type is only recorded. The command is forwarded to the
// PC after commit.
func (s *CommandService) RemoteCommand(ctx context.Context, adminID, pcID int, commandType, message string) (*CommandResult, error) {
	commandType = strings.TrimSpace(commandType)
	message = strings.TrimSpace(message)

	details := map[string]string{}
	if err := validation.ValidatePositiveID("pc_id", pcID); err != nil {
		details["pc_id"] = err.Error()
	}
	if err := validation.ValidateRequired("command_type", commandType); err != nil {
		details["command_type"] = err.Error()
	} else if err := validation.ValidateMaxLength("command_type", commandType, validation.MaxCommandTypeLength); err != nil {
		details["command_type"] = err.Error()
	}
	if len(details) > 0 {
		return nil, errors.ValidationErrorWithDetails("Invalid remote command", details)
	}

	var summary string
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		switch commandType {
		case model.CommandLogoff, model.CommandRestart:
			msg, err := tx.Shutdown(ctx, pcID)
			if err != nil {
				return err
			}
			summary = msg

			eventType, eventDetails := model.EventRemoteShutdown, "Admin forced shutdown: "+msg
			if commandType == model.CommandRestart {
				eventType, eventDetails = model.EventRemoteRestart, msg
			}
			return tx.AppendEvent(ctx, eventType, &pcID, eventDetails)
		default:
			if _, err := tx.GetPC(ctx, pcID); err != nil {
				return err
			}
			summary = commandType
			return tx.AppendEvent(ctx, model.EventRemoteCommand, &pcID, "Admin sent command: "+commandType)
		}
	})
	if err != nil {
		s.logger.Error("Remote command failed",
			zap.Int("pc_id", pcID),
			zap.String("command", commandType),
			zap.Error(err),
		)
		return nil, storeError(err, fmt.Sprintf("run %s command", commandType))
	}

	result := &CommandResult{Message: summary}
	s.logger.Info("Remote command executed",
		zap.Int("pc_id", pcID),
		zap.String("command", commandType),
		zap.Int("admin_id", adminID),
		zap.String("result", summary),
	)

	if s.dispatcher != nil {
		cmd := model.RemoteCommand{PCID: pcID, Command: commandType, Message: message, IssuedBy: adminID, IssuedAt: s.now()}
		if err := s.dispatcher.Dispatch(ctx, cmd); err != nil {
			s.logger.Warn("Remote command not delivered to PC", zap.Int("pc_id", pcID), zap.Error(err))
		} else {
			result.Dispatched = true
		}
	}

	return result, nil
}
