package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sangkips/receipt-print-api/pkg/apperror"
	"github.com/sangkips/receipt-print-api/pkg/utils"
)

// TerminalAuthService pairs POS terminals with the print service
type TerminalAuthService struct {
	pairingCodeHash string
	jwtManager      *utils.JWTManager
	logger          *zap.Logger
}

// NewTerminalAuthService creates a new terminal auth service. An empty
// pairingCodeHash disables pairing.
func NewTerminalAuthService(pairingCodeHash string, jwtManager *utils.JWTManager, logger *zap.Logger) *TerminalAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TerminalAuthService{
		pairingCodeHash: pairingCodeHash,
		jwtManager:      jwtManager,
		logger:          logger,
	}
}

// PairInput represents the pairing request
type PairInput struct {
	PairingCode  string
	TerminalName string
}

// PairOutput represents the issued terminal credentials
type PairOutput struct {
	TerminalID  string    `json:"terminal_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Pair checks the pairing code and issues a terminal access token
func (s *TerminalAuthService) Pair(ctx context.Context, input *PairInput) (*PairOutput, error) {
	if s.pairingCodeHash == "" {
		return nil, apperror.NewServiceUnavailableError("Terminal pairing is not configured")
	}
	if !utils.CheckPasswordHash(input.PairingCode, s.pairingCodeHash) {
		s.logger.Warn("Terminal pairing rejected", zap.String("terminal_name", input.TerminalName))
		return nil, apperror.ErrInvalidCredentials
	}

	name := strings.TrimSpace(input.TerminalName)
	terminalID := utils.NewTerminalID(name)
	token, err := s.jwtManager.GenerateTerminalToken(terminalID, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Terminal paired", zap.String("terminal_id", terminalID))
	return &PairOutput{
		TerminalID:  terminalID,
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.jwtManager.Expiry()).UTC(),
	}, nil
}
