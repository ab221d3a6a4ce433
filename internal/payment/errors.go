package payment

// GatewayError wraps a failure talking to the payment provider. Checkout
// session creation is not idempotent, so callers must not blindly retry.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return "payment gateway request failed: " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// SignatureError reports a webhook payload whose signature does not match
// the configured signing secret. Callers must reject the event outright.
type SignatureError struct {
	Err error
}

func (e *SignatureError) Error() string {
	return "webhook signature verification failed: " + e.Err.Error()
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}
