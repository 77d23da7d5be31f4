package autoscaler

import (
	"errors"

	metrics "github.com/armon/go-metrics"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/notifier"
)

// fulfillRequests waits for every issued scale operation to resolve. A failed
// operation is logged and reported to the notification providers but never
// aborts the remaining operations; the next decision cycle re-evaluates the
// pending pods against the refreshed group state.
func fulfillRequests(cluster structs.Cluster, asyncOperations []*structs.AsyncOperation) {
	for _, asyncOperation := range asyncOperations {
		err := asyncOperation.Wait()

		switch {
		case err == nil:
			logging.Info("core/fulfillment: group %v scaled to %v",
				asyncOperation.Group.Name, asyncOperation.NewCapacity)
			metrics.IncrCounter([]string{"scale",
				asyncOperation.Group.Name, "success"}, 1)

		case errors.Is(err, structs.ErrScaleTimeout):
			logging.Warning("core/fulfillment: timeout while scaling group %v "+
				"to %v", asyncOperation.Group.Name, asyncOperation.NewCapacity)
			metrics.IncrCounter([]string{"scale",
				asyncOperation.Group.Name, "timeout"}, 1)

		default:
			logging.Warning("core/fulfillment: failed to scale group %v to "+
				"%v: %v", asyncOperation.Group.Name,
				asyncOperation.NewCapacity, err)
			metrics.IncrCounter([]string{"scale",
				asyncOperation.Group.Name, "failure"}, 1)

			cluster.Notifier().SendNotification(notifier.FailureMessage{
				GroupName: asyncOperation.Group.Name,
				Reason:    err.Error(),
			})
		}
	}
}
