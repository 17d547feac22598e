package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/roundops/internal/logger"
)

// DefaultQRSize is the QR image edge in pixels
const DefaultQRSize = 256

// CheckInService renders the QR codes participants scan to check into a round
type CheckInService struct {
	log     logger.Logger
	baseURL string
}

// NewCheckInService creates a new CheckInService. baseURL is the public
// participant app address; an empty one disables QR codes.
func NewCheckInService(log logger.Logger, baseURL string) *CheckInService {
	return &CheckInService{log: log, baseURL: strings.TrimRight(baseURL, "/")}
}

// CheckInURL returns the participant-facing check-in address of a round
func (s *CheckInService) CheckInURL(eventID string, roundNo int) (string, error) {
	if s.baseURL == "" {
		return "", ErrNoCheckInURL
	}
	return fmt.Sprintf("%s/events/%s/rounds/%d/checkin", s.baseURL, url.PathEscape(eventID), roundNo), nil
}

// QRCode renders the check-in address of a round as a PNG
func (s *CheckInService) QRCode(ctx context.Context, eventID string, roundNo, size int) ([]byte, error) {
	if size == 0 {
		size = DefaultQRSize
	}
	if size < 64 || size > 1024 {
		return nil, ErrInvalidQRSize
	}
	checkInURL, err := s.CheckInURL(eventID, roundNo)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Rendering check-in QR", "url", checkInURL, "size", size)
	return qrcode.Encode(checkInURL, qrcode.Medium, size)
}
