package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/models"
)

var (
	// ErrBadSignature indicates the webhook payload failed verification
	ErrBadSignature = fmt.Errorf("invalid webhook signature")

	// ErrNothingToPay indicates the checkout target has no positive amount
	ErrNothingToPay = fmt.Errorf("nothing to pay")
)

// PaymentService bridges bookings and add-ons to the hosted checkout
// provider and settles them from its webhooks.
type PaymentService struct {
	sc       *client.API
	events   *database.PaymentEventRepository
	bookings *database.BookingRepository
	outside  *database.OutsideBookingRepository
	pivots   *database.BookingAddOnRepository
	upsells  *database.UpsellCodeRepository

	webhookSecret string
	currency      string
	logger        *logrus.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	secretKey, webhookSecret, currency string,
	events *database.PaymentEventRepository,
	bookings *database.BookingRepository,
	outside *database.OutsideBookingRepository,
	pivots *database.BookingAddOnRepository,
	upsells *database.UpsellCodeRepository,
	logger *logrus.Logger,
) *PaymentService {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &PaymentService{
		sc:            sc,
		events:        events,
		bookings:      bookings,
		outside:       outside,
		pivots:        pivots,
		upsells:       upsells,
		webhookSecret: webhookSecret,
		currency:      currency,
		logger:        logger,
	}
}

// CreateBookingCheckout opens a hosted checkout session for a booking total
func (s *PaymentService) CreateBookingCheckout(booking *models.Booking, successURL, cancelURL string) (*models.CheckoutSessionResponse, error) {
	if booking.Total <= 0 {
		return nil, ErrNothingToPay
	}

	name := fmt.Sprintf("Stay at hotel #%d", booking.HotelID)
	params := s.sessionParams(name, booking.Total, 1, successURL, cancelURL,
		models.CheckoutKindBooking, booking.ID)

	return s.newSession(params)
}

// CreateAddOnCheckout opens a session for a confirmed add-on request on an
// outside booking
func (s *PaymentService) CreateAddOnCheckout(row *models.OutsideBookingAddOn, successURL, cancelURL string) (*models.CheckoutSessionResponse, error) {
	amount := row.UnitPrice * float64(row.Quantity)
	if amount <= 0 {
		return nil, ErrNothingToPay
	}

	name := "Hotel add-on"
	if row.AddOnName != nil {
		name = *row.AddOnName
	}

	params := s.sessionParams(name, row.UnitPrice, int64(row.Quantity), successURL, cancelURL,
		models.CheckoutKindOutsideAddOn, row.ID)

	return s.newSession(params)
}

// CreateUpsellCheckout opens a session so the guest can pay a pending
// upsell code online. The session id is stored on the code for audit.
func (s *PaymentService) CreateUpsellCheckout(code *models.UpsellCode, successURL, cancelURL string) (*models.CheckoutSessionResponse, error) {
	amount := code.UnitPrice * float64(code.Quantity)
	if amount <= 0 {
		return nil, ErrNothingToPay
	}

	name := fmt.Sprintf("Front desk add-on (code %s)", code.Code)
	params := s.sessionParams(name, code.UnitPrice, int64(code.Quantity), successURL, cancelURL,
		models.CheckoutKindUpsell, code.ID)

	resp, err := s.newSession(params)
	if err != nil {
		return nil, err
	}

	if err := s.upsells.SetPaymentID(code.ID, resp.SessionID); err != nil {
		s.logger.WithError(err).WithField("code", code.ID).Warn("failed to store session on upsell code")
	}

	return resp, nil
}

// sessionParams builds checkout params carrying the kind/reference pair on
// both the session and its payment intent, so either webhook event can
// settle the target row.
func (s *PaymentService) sessionParams(name string, unitPrice float64, qty int64, successURL, cancelURL, kind string, reference int64) *stripe.CheckoutSessionParams {
	meta := map[string]string{
		"kind":      kind,
		"reference": strconv.FormatInt(reference, 10),
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
					UnitAmount: stripe.Int64(toMinorUnits(unitPrice)),
				},
				Quantity: stripe.Int64(qty),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: meta,
		},
	}
	for k, v := range meta {
		params.AddMetadata(k, v)
	}

	return params
}

func (s *PaymentService) newSession(params *stripe.CheckoutSessionParams) (*models.CheckoutSessionResponse, error) {
	sess, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &models.CheckoutSessionResponse{SessionID: sess.ID, URL: sess.URL}, nil
}

// HandleWebhook verifies and processes one webhook delivery. Replayed
// events are recorded but produce no further side effects, and unknown
// event types are acknowledged without action.
func (s *PaymentService) HandleWebhook(payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return ErrBadSignature
	}

	seen, err := s.events.Seen(event.ID)
	if err != nil {
		return fmt.Errorf("failed to check event: %w", err)
	}

	record := &models.PaymentEvent{
		EventID: event.ID,
		Type:    string(event.Type),
		Payload: json.RawMessage(payload),
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("failed to decode session: %w", err)
		}

		record.SessionID = &sess.ID
		if ref, ok := sess.Metadata["reference"]; ok {
			record.Reference = &ref
		}

		if err := s.events.Record(record); err != nil {
			return fmt.Errorf("failed to record event: %w", err)
		}
		if seen {
			s.logger.WithField("event", event.ID).Info("replayed webhook event, skipping")
			return nil
		}

		paymentID := sess.ID
		if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
			paymentID = sess.PaymentIntent.ID
		}
		return s.settle(sess.Metadata, paymentID)

	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return fmt.Errorf("failed to decode payment intent: %w", err)
		}

		if ref, ok := intent.Metadata["reference"]; ok {
			record.Reference = &ref
		}

		if err := s.events.Record(record); err != nil {
			return fmt.Errorf("failed to record event: %w", err)
		}
		if seen {
			s.logger.WithField("event", event.ID).Info("replayed webhook event, skipping")
			return nil
		}

		return s.settle(intent.Metadata, intent.ID)

	default:
		if err := s.events.Record(record); err != nil {
			return fmt.Errorf("failed to record event: %w", err)
		}
		s.logger.WithField("type", event.Type).Debug("ignoring webhook event")
		return nil
	}
}

// settle routes a paid event to the row named in its metadata
func (s *PaymentService) settle(meta map[string]string, paymentID string) error {
	kind := meta["kind"]
	reference, err := strconv.ParseInt(meta["reference"], 10, 64)
	if err != nil {
		s.logger.WithField("payment", paymentID).Warn("paid event without usable reference")
		return nil
	}

	switch kind {
	case models.CheckoutKindBooking:
		return s.bookings.UpdatePaymentStatus(reference, models.PaymentPaid, &paymentID)
	case models.CheckoutKindOutsideAddOn:
		return s.pivots.MarkOutsidePaid(reference, &paymentID)
	case models.CheckoutKindUpsell:
		return s.settleUpsell(reference, paymentID)
	default:
		s.logger.WithFields(logrus.Fields{
			"payment": paymentID,
			"kind":    kind,
		}).Warn("paid event with unknown kind")
		return nil
	}
}

// settleUpsell marks the code used and books its add-on already paid, the
// same shape a front-desk redemption produces. A code the paired
// session/intent event settled first is left alone.
func (s *PaymentService) settleUpsell(codeID int64, paymentID string) error {
	code, err := s.upsells.MarkPaid(codeID, paymentID)
	if err != nil {
		if err == sql.ErrNoRows {
			s.logger.WithField("code", codeID).Info("upsell code already settled")
			return nil
		}
		return fmt.Errorf("failed to settle upsell code: %w", err)
	}

	row := &models.OutsideBookingAddOn{
		OutsideBookingID: code.OutsideBookingID,
		AddOnID:          code.AddOnID,
		OptionID:         code.OptionID,
		Quantity:         code.Quantity,
		UnitPrice:        code.UnitPrice,
		Status:           models.AddOnRequestReady,
		PaymentStatus:    models.PaymentPaid,
		PaymentID:        &paymentID,
	}

	return s.pivots.CreateOutside(row)
}

// ProcessApplePay charges a wallet card token against the booking total
// with an immediately confirmed payment intent. The booking is settled
// here when the charge succeeds synchronously; otherwise the
// payment_intent.succeeded webhook picks it up.
func (s *PaymentService) ProcessApplePay(booking *models.Booking, token string) (*models.ApplePayResult, error) {
	if booking.Total <= 0 {
		return nil, ErrNothingToPay
	}

	method, err := s.sc.PaymentMethods.New(&stripe.PaymentMethodParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCardParams{Token: stripe.String(token)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment method: %w", err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toMinorUnits(booking.Total)),
		Currency:      stripe.String(s.currency),
		PaymentMethod: stripe.String(method.ID),
		Confirm:       stripe.Bool(true),
	}
	params.AddMetadata("kind", models.CheckoutKindBooking)
	params.AddMetadata("reference", strconv.FormatInt(booking.ID, 10))

	intent, err := s.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	result := &models.ApplePayResult{
		PaymentIntentID: intent.ID,
		Status:          string(intent.Status),
	}

	if intent.Status == stripe.PaymentIntentStatusSucceeded {
		paymentID := intent.ID
		if err := s.bookings.UpdatePaymentStatus(booking.ID, models.PaymentPaid, &paymentID); err != nil {
			return nil, fmt.Errorf("failed to mark booking paid: %w", err)
		}
		result.Paid = true
	}

	return result, nil
}

// toMinorUnits converts a major-unit amount to the provider's integer
// minor units
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
