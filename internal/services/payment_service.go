package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/Turan141/payments-terminal/config"
	"github.com/Turan141/payments-terminal/internal/amount"
	"github.com/Turan141/payments-terminal/internal/card"
	"github.com/Turan141/payments-terminal/internal/qr"
	"github.com/Turan141/payments-terminal/internal/sequence"
	"github.com/Turan141/payments-terminal/internal/status"
	"github.com/Turan141/payments-terminal/models"
	"github.com/Turan141/payments-terminal/monitoring"
	"github.com/Turan141/payments-terminal/utils"
)

// Payment variants.
const (
	ModeLocal   = "local"
	ModeGateway = "gateway"
)

const keypadTTL = 30 * time.Minute

// Gateway registers payment intents with the external backend
// (remote variant). Implementations live in internal/services/gateway.
type Gateway interface {
	CreateIntent(ctx context.Context, amount, currency string) (int64, error)
}

// PaymentService owns the intent lifecycle: keypad entry, intent creation,
// QR payload, simulated card/wallet settlement, receipts.
type PaymentService struct {
	Redis   *redis.Client
	PubNub  *pubnub.PubNub
	gateway Gateway
	breaker *utils.CircuitBreaker

	baseURL   string
	currency  string
	mode      string
	intentTTL time.Duration
	cardDelay time.Duration

	sleeper sequence.Sleeper
	now     func() time.Time
	newID   func() string
	channel string
}

func NewPaymentService(redisClient *redis.Client, gw Gateway, pn *pubnub.PubNub, cfg *config.Config) *PaymentService {
	return &PaymentService{
		Redis:   redisClient,
		PubNub:  pn,
		gateway: gw,
		breaker: utils.NewCircuitBreaker("payment-gateway"),

		baseURL:   cfg.BaseURL,
		currency:  cfg.Currency,
		mode:      cfg.PaymentMode,
		intentTTL: cfg.IntentTTL,
		cardDelay: cfg.CardProcessingDelay,

		sleeper: sequence.Clock{},
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
		channel: cfg.PubNubChannel,
	}
}

func intentKey(id string) string {
	return fmt.Sprintf("intent:%s", id)
}

func keypadKey(token string) string {
	return fmt.Sprintf("keypad:%s", token)
}

// PressKey applies one keypad key to the session's pending amount.
func (s *PaymentService) PressKey(ctx context.Context, token, key string) (amount.Pending, error) {
	pending, err := s.PendingAmount(ctx, token)
	if err != nil {
		return amount.Pending{}, err
	}

	next, err := pending.Press(key)
	if err != nil {
		return pending, err
	}

	if err := s.Redis.Set(ctx, keypadKey(token), next.Cents(), keypadTTL).Err(); err != nil {
		return pending, fmt.Errorf("pressKey: redis: %w", err)
	}
	return next, nil
}

// PendingAmount reads the session's accumulated cents.
func (s *PaymentService) PendingAmount(ctx context.Context, token string) (amount.Pending, error) {
	cents, err := s.Redis.Get(ctx, keypadKey(token)).Int64()
	if err == redis.Nil {
		return amount.Pending{}, nil
	}
	if err != nil {
		return amount.Pending{}, fmt.Errorf("pendingAmount: redis: %w", err)
	}
	return amount.FromCents(cents), nil
}

// ClearPending resets the keypad for a fresh payment.
func (s *PaymentService) ClearPending(ctx context.Context, token string) error {
	if err := s.Redis.Del(ctx, keypadKey(token)).Err(); err != nil {
		return fmt.Errorf("clearPending: redis: %w", err)
	}
	return nil
}

// CreateIntent registers a payment for the given decimal amount string.
// The local variant encodes amount (and recipient) into the QR payload;
// the gateway variant registers the amount remotely and encodes only the
// returned opaque id.
func (s *PaymentService) CreateIntent(ctx context.Context, amountStr, recipient string) (*models.PaymentIntent, error) {
	d, err := decimal.NewFromString(amountStr)
	if err != nil || !d.IsPositive() {
		return nil, status.ErrAmountRequired
	}
	amt := d.StringFixed(2)

	now := s.now()
	intent := &models.PaymentIntent{
		Amount:    amt,
		Currency:  s.currency,
		Recipient: recipient,
		Status:    models.IntentPending,
		CreatedAt: now,
		ExpiresAt: now.Add(s.intentTTL),
	}

	switch s.mode {
	case ModeGateway:
		var gatewayID int64
		err := s.breaker.Execute(ctx, func() error {
			var gwErr error
			gatewayID, gwErr = s.gateway.CreateIntent(ctx, amt, s.currency)
			return gwErr
		})
		if err != nil {
			monitoring.PaymentsCreated.WithLabelValues(s.mode, "error").Inc()
			return nil, fmt.Errorf("createIntent: gateway: %w", err)
		}
		intent.ID = strconv.FormatInt(gatewayID, 10)
		intent.GatewayID = gatewayID
		intent.PayURL = qr.PayURLForGateway(s.baseURL, gatewayID)

	default:
		intent.ID = s.newID()
		intent.PayURL = qr.PayURL(s.baseURL, amt, recipient)
	}

	if err := s.storeIntent(ctx, intent); err != nil {
		return nil, err
	}

	monitoring.PaymentsCreated.WithLabelValues(s.mode, "ok").Inc()
	monitoring.PaymentAmount.Observe(d.InexactFloat64())

	log.WithFields(log.Fields{
		"payment_id": intent.ID,
		"amount":     intent.Amount,
		"mode":       s.mode,
	}).Info("Payment intent created")

	return intent, nil
}

func (s *PaymentService) storeIntent(ctx context.Context, intent *models.PaymentIntent) error {
	key := intentKey(intent.ID)
	err := s.Redis.HSet(ctx, key,
		"payment_id", intent.ID,
		"amount", intent.Amount,
		"currency", intent.Currency,
		"recipient", intent.Recipient,
		"gateway_id", intent.GatewayID,
		"pay_url", intent.PayURL,
		"status", intent.Status,
		"created_at", intent.CreatedAt.Unix(),
	).Err()
	if err != nil {
		return fmt.Errorf("storeIntent: redis: %w", err)
	}

	if err := s.Redis.Expire(ctx, key, s.intentTTL).Err(); err != nil {
		return fmt.Errorf("storeIntent: expire: %w", err)
	}
	return nil
}

// GetIntent loads an intent; expired intents are simply gone.
func (s *PaymentService) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	data, err := s.Redis.HGetAll(ctx, intentKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("getIntent: redis: %w", err)
	}
	if len(data) == 0 {
		return nil, status.ErrIntentNotFound
	}

	gatewayID, _ := strconv.ParseInt(data["gateway_id"], 10, 64)
	createdAt, _ := strconv.ParseInt(data["created_at"], 10, 64)

	created := time.Unix(createdAt, 0)
	return &models.PaymentIntent{
		ID:        data["payment_id"],
		Amount:    data["amount"],
		Currency:  data["currency"],
		Recipient: data["recipient"],
		GatewayID: gatewayID,
		PayURL:    data["pay_url"],
		Status:    data["status"],
		CreatedAt: created,
		ExpiresAt: created.Add(s.intentTTL),
	}, nil
}

// QRImage renders the intent's payment URL as a PNG.
func (s *PaymentService) QRImage(ctx context.Context, id string) ([]byte, error) {
	intent, err := s.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}
	return qr.Render(intent.PayURL)
}

// PayWithCard validates the card form and, when valid, simulates the
// settlement delay and returns the status handoff URL. Field errors come
// back as data, not as a Go error, so each field stays independently
// correctable.
func (s *PaymentService) PayWithCard(ctx context.Context, id string, details models.CardDetails) (string, map[string]string, error) {
	fieldErrs := card.Validate(card.Input{
		Number:      details.Number,
		Expiry:      details.Expiry,
		CVV:         details.CVV,
		Name:        details.Name,
		RequireName: true,
	}, s.now())
	if len(fieldErrs) > 0 {
		for field := range fieldErrs {
			monitoring.CardValidationFailures.WithLabelValues(field).Inc()
		}
		return "", fieldErrs, nil
	}

	redirect, err := s.settle(ctx, id, "card")
	return redirect, nil, err
}

// PayWithWallet is the digital-wallet shortcut: no validation at all.
func (s *PaymentService) PayWithWallet(ctx context.Context, id string) (string, error) {
	return s.settle(ctx, id, "wallet")
}

// settle marks the intent processing, waits out the simulated latency, and
// completes it. The stored status doubles as the submission lock: a second
// submission finds "processing" and is rejected.
func (s *PaymentService) settle(ctx context.Context, id, method string) (string, error) {
	intent, err := s.GetIntent(ctx, id)
	if err != nil {
		return "", err
	}
	switch intent.Status {
	case models.IntentPaid:
		return "", status.ErrAlreadyPaid
	case models.IntentProcessing:
		return "", status.ErrAlreadyProcessing
	}

	key := intentKey(id)
	if err := s.Redis.HSet(ctx, key, "status", models.IntentProcessing).Err(); err != nil {
		return "", fmt.Errorf("settle: redis: %w", err)
	}

	// Simulated network latency; always succeeds, no failure branch.
	if err := s.sleeper.Sleep(ctx, s.cardDelay); err != nil {
		// The payer left mid-delay. Release the lock so a retry is not
		// rejected until the TTL deletes the intent.
		s.unlockIntent(id)
		return "", err
	}

	if err := s.Redis.HSet(ctx, key, "status", models.IntentPaid).Err(); err != nil {
		return "", fmt.Errorf("settle: redis: %w", err)
	}

	monitoring.PaymentsSettled.WithLabelValues(method).Inc()
	log.WithFields(log.Fields{
		"payment_id": id,
		"method":     method,
	}).Info("Payment settled")

	return qr.StatusURL(s.baseURL, models.ResultSuccess, intent.Amount, intent.Recipient), nil
}

// unlockIntent rolls an abandoned settlement back to pending. The request
// context is already canceled at this point, so the write is detached.
func (s *PaymentService) unlockIntent(id string) {
	if err := s.Redis.HSet(context.Background(), intentKey(id), "status", models.IntentPending).Err(); err != nil {
		log.WithField("payment_id", id).Errorf("Error releasing intent lock: %v", err)
	}
}

// ConfirmSettlement runs the terminal-side settlement sequence for an
// intent and returns the replayed progress messages. The stored status is
// the same submission lock settle uses: one in-flight settlement per
// intent, whichever path drives it.
func (s *PaymentService) ConfirmSettlement(ctx context.Context, id string) ([]string, error) {
	intent, err := s.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}
	switch intent.Status {
	case models.IntentPaid:
		return nil, status.ErrAlreadyPaid
	case models.IntentProcessing:
		return nil, status.ErrAlreadyProcessing
	}

	if err := s.Redis.HSet(ctx, intentKey(id), "status", models.IntentProcessing).Err(); err != nil {
		return nil, fmt.Errorf("confirm: redis: %w", err)
	}

	var progress []string
	machine := sequence.NewMachine(s.sleeper)
	if err := machine.Run(ctx, func(msg string) {
		progress = append(progress, msg)
	}); err != nil {
		s.unlockIntent(id)
		return progress, err
	}

	if err := s.Redis.HSet(ctx, intentKey(id), "status", models.IntentPaid).Err(); err != nil {
		return progress, fmt.Errorf("confirm: redis: %w", err)
	}

	monitoring.PaymentsSettled.WithLabelValues("terminal").Inc()
	return progress, nil
}

// BuildReceipt renders the status screen's read-only view from the handoff
// parameters. The reference is generated once per call and is display-only.
func (s *PaymentService) BuildReceipt(result, amountStr, recipient string) (*models.Receipt, error) {
	if recipient == "" {
		recipient = "Merchant"
	}
	if result != models.ResultSuccess {
		result = models.ResultFailure
	}

	ref, err := utils.GenerateReceiptReference()
	if err != nil {
		return nil, fmt.Errorf("receipt: reference: %w", err)
	}

	return &models.Receipt{
		Result:    result,
		Amount:    amountStr,
		Recipient: recipient,
		Reference: ref,
		Timestamp: s.now(),
	}, nil
}

// SubscribeSettlementNotifications listens for gateway-side settlement
// events and completes the matching intents. Only wired up when PubNub is
// configured (gateway variant).
func (s *PaymentService) SubscribeSettlementNotifications() {
	listener := pubnub.NewListener()

	s.PubNub.AddListener(listener)
	s.PubNub.Subscribe().
		Channels([]string{s.channel}).
		Execute()

	for message := range listener.Message {
		go s.handleSettlementNotification(message)
	}
}

func (s *PaymentService) handleSettlementNotification(message *pubnub.PNMessage) {
	var notification models.SettlementNotification

	data, ok := message.Message.(map[string]any)
	if !ok {
		return
	}

	jsonData, _ := json.Marshal(data)
	if err := json.Unmarshal(jsonData, &notification); err != nil {
		log.Errorf("Error parsing settlement notification: %v", err)
		return
	}

	if notification.Status != models.ResultSuccess {
		return
	}

	ctx := context.Background()
	if err := s.Redis.HSet(ctx, intentKey(notification.PaymentID), "status", models.IntentPaid).Err(); err != nil {
		log.WithField("payment_id", notification.PaymentID).Errorf("Error completing intent: %v", err)
		return
	}

	monitoring.PaymentsSettled.WithLabelValues("gateway").Inc()
	log.WithField("payment_id", notification.PaymentID).Info("Settlement notification applied")
}
