package reconnect

import "time"

// Единая политика переподключения клиента вместо россыпи вариантов
// по транспортам: чистый конечный автомат без сокета внутри.

type State string

const (
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
	StateError        State = "error" // попытки исчерпаны
)

type Policy struct {
	InitialDelay time.Duration // default 500ms
	MaxDelay     time.Duration // потолок экспоненты, default 30s
	MaxAttempts  int           // default 10; 0 = default, <0 = без лимита
}

type Backoff struct {
	policy  Policy
	state   State
	attempt int
}

func New(p Policy) *Backoff {
	if p.InitialDelay <= 0 {
		p.InitialDelay = 500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.MaxAttempts == 0 {
		p.MaxAttempts = 10
	}
	return &Backoff{policy: p, state: StateDisconnected}
}

func (b *Backoff) State() State { return b.state }

func (b *Backoff) Attempt() int { return b.attempt }

// Next возвращает паузу перед следующей попыткой. false — лимит попыток
// исчерпан, автомат уходит в error и остаётся там до Reset.
func (b *Backoff) Next() (time.Duration, bool) {
	if b.state == StateError {
		return 0, false
	}
	if b.policy.MaxAttempts > 0 && b.attempt >= b.policy.MaxAttempts {
		b.state = StateError
		return 0, false
	}

	// удвоение от initial с потолком MaxDelay
	d := b.policy.InitialDelay << b.attempt
	if d > b.policy.MaxDelay || d <= 0 {
		d = b.policy.MaxDelay
	}

	b.attempt++
	b.state = StateConnecting
	return d, true
}

// Connected фиксирует успешное подключение и сбрасывает счётчик попыток.
func (b *Backoff) Connected() {
	b.state = StateConnected
	b.attempt = 0
}

// Disconnected — соединение потеряно; следующая пауза снова с нуля
// не начинается, экспонента продолжается до Connected или лимита.
func (b *Backoff) Disconnected() {
	if b.state != StateError {
		b.state = StateDisconnected
	}
}

// Reset возвращает автомат в исходное состояние.
func (b *Backoff) Reset() {
	b.state = StateDisconnected
	b.attempt = 0
}
