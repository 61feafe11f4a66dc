package mail

// Compile-time interface compliance checks
var (
	_ Transport = (*SMTPTransport)(nil)
	_ Transport = (*MockTransport)(nil)
	_ Session   = (*MockSession)(nil)
)

// MockTransport is a mock implementation of Transport for testing
type MockTransport struct {
	ConnectFunc func(host string, port int) (Session, error)

	// Session is returned by Connect when ConnectFunc is nil
	Session *MockSession

	Hosts []string
	Ports []int
}

// NewMockTransport creates a MockTransport handing out a fresh MockSession
func NewMockTransport() *MockTransport {
	return &MockTransport{Session: &MockSession{}}
}

// Connect records the address and returns the configured session
func (m *MockTransport) Connect(host string, port int) (Session, error) {
	m.Hosts = append(m.Hosts, host)
	m.Ports = append(m.Ports, port)
	if m.ConnectFunc != nil {
		return m.ConnectFunc(host, port)
	}
	return m.Session, nil
}

// SentMessage is one message accepted by a MockSession
type SentMessage struct {
	From string
	To   []string
	Data []byte
}

// MockSession is a mock implementation of Session for testing
type MockSession struct {
	StartTLSFunc func() error
	AuthFunc     func(user, password string) error
	SendFunc     func(from string, to []string, msg []byte) error

	StartTLSCalls int
	AuthUser      string
	AuthPassword  string
	AuthCalls     int
	Sent          []SentMessage
	Quitted       bool
	Closed        bool
}

// StartTLS calls StartTLSFunc or succeeds
func (m *MockSession) StartTLS() error {
	m.StartTLSCalls++
	if m.StartTLSFunc != nil {
		return m.StartTLSFunc()
	}
	return nil
}

// Auth records the credentials and calls AuthFunc or succeeds
func (m *MockSession) Auth(user, password string) error {
	m.AuthCalls++
	m.AuthUser = user
	m.AuthPassword = password
	if m.AuthFunc != nil {
		return m.AuthFunc(user, password)
	}
	return nil
}

// Send calls SendFunc and records the message if it was accepted
func (m *MockSession) Send(from string, to []string, msg []byte) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(from, to, msg); err != nil {
			return err
		}
	}
	m.Sent = append(m.Sent, SentMessage{From: from, To: to, Data: msg})
	return nil
}

// Quit marks the session as ended
func (m *MockSession) Quit() error {
	m.Quitted = true
	return nil
}

// Close marks the session as dropped
func (m *MockSession) Close() error {
	m.Closed = true
	return nil
}
