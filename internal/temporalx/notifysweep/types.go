package notifysweep

const (
	WorkflowName   = "notification_sweep"
	ActivitySweep  = "notification_sweep_channel"
	CronWorkflowID = "notification-sweep"
)

type SweepInput struct {
	Channels []string `json:"channels"`
}

type SweepResult struct {
	Channel string `json:"channel"`
	Sent    int    `json:"sent"`
	Skipped int    `json:"skipped"`
	Errors  int    `json:"errors"`
	Failed  string `json:"failed,omitempty"`
}
