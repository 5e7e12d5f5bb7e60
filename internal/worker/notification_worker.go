package worker

import (
	"github.com/SAGARSINGH-1/HostelCMS/internal/events"
	"github.com/SAGARSINGH-1/HostelCMS/internal/service"
)

// StartNotificationWorker subscribes the fan-out service to domain events.
func StartNotificationWorker(fanout *service.FanoutService, dispatcher events.Dispatcher) {
	if fanout == nil {
		return
	}
	fanout.RegisterHandlers(dispatcher)
}
