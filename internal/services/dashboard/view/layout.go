package view

// Element ids of the dashboard page.
const (
	StatusDot        = "status-dot"
	ConnectionStatus = "connection-status"
	ServerTime       = "server-time"

	LatestData  = "latest-data"
	LastUpdated = "last-updated"
	DeviceID    = "device-id"
	CurrentVal  = "current-value"
	DeviceState = "device-status"
	MessageID   = "message-id"

	TimeRange      = "time-range"
	HistoricalData = "historical-data"
	HistoryChart   = "historyChart"

	TotalReadings = "total-readings"
	AverageValue  = "average-value"
	MaxValue      = "max-value"
	MinValue      = "min-value"
)

// Tab panel ids; each has a button with id TabButtonID(name).
const (
	TabLive       = "live"
	TabHistorical = "historical"
	TabStats      = "stats"
)

// Class names the renderers toggle.
const (
	ClassActive     = "active"
	ClassNewData    = "new-data"
	ClassTabContent = "tab-content"
	ClassTabButton  = "tab-button"
)

var Tabs = []string{TabLive, TabHistorical, TabStats}

func TabButtonID(name string) string { return "tab-btn-" + name }

// NewDashboard builds the document with every element the renderers use,
// showing the live tab and a 24 hour range.
func NewDashboard() *Document {
	d := NewDocument()
	for _, id := range []string{
		StatusDot, ConnectionStatus, ServerTime,
		LatestData, LastUpdated, DeviceID, CurrentVal, DeviceState, MessageID,
		TimeRange, HistoricalData, HistoryChart,
		TotalReadings, AverageValue, MaxValue, MinValue,
	} {
		d.Add(id)
	}
	for _, t := range Tabs {
		d.Add(t, ClassTabContent)
		d.Add(TabButtonID(t), ClassTabButton)
	}
	d.AddClass(TabLive, ClassActive)
	d.AddClass(TabButtonID(TabLive), ClassActive)

	d.SetValue(TimeRange, "24")
	d.SetHTML(LatestData, `<p class="loading">Waiting for data...</p>`)
	d.SetHTML(HistoricalData, `<p class="loading">Loading...</p>`)
	for _, id := range []string{LastUpdated, DeviceID, CurrentVal, DeviceState, MessageID,
		TotalReadings, AverageValue, MaxValue, MinValue} {
		d.SetText(id, "--")
	}
	d.SetText(ConnectionStatus, "Connecting...")
	return d
}
