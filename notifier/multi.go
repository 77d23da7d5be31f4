package notifier

// MultiProvider fans notifications out to every configured backend while
// stamping the cluster identity onto each message.
type MultiProvider struct {
	alertUID          string
	clusterIdentifier string
	providers         []Notifier
}

// NewMultiProvider wraps the supplied backends behind a single notifier.
func NewMultiProvider(alertUID, clusterIdentifier string, providers ...Notifier) *MultiProvider {
	return &MultiProvider{
		alertUID:          alertUID,
		clusterIdentifier: clusterIdentifier,
		providers:         providers,
	}
}

// Name returns the name of the notification endpoint.
func (m *MultiProvider) Name() string {
	return "multi"
}

// NotifyScale relays the scale notification to every backend.
func (m *MultiProvider) NotifyScale(message ScaleMessage) {
	message.AlertUID = m.alertUID
	message.ClusterIdentifier = m.clusterIdentifier

	for _, provider := range m.providers {
		provider.NotifyScale(message)
	}
}

// SendNotification relays the failure notification to every backend.
func (m *MultiProvider) SendNotification(message FailureMessage) {
	message.AlertUID = m.alertUID
	message.ClusterIdentifier = m.clusterIdentifier

	for _, provider := range m.providers {
		provider.SendNotification(message)
	}
}
