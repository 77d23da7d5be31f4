package autoscaler

import (
	"fmt"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

// FailsafeCheck implements the failsafe mode circuit breaker. Once tripped,
// the circuit breaker must be reset by a human operator through the CLI.
func FailsafeCheck(state *structs.ScalingState) (passing bool) {
	if state.FailsafeMode {
		return false
	}

	logging.Debug("core/failsafe: the failsafe check passes, scaling " +
		"evaluations and operations will be permitted")

	return true
}

// SetFailsafeMode is used to toggle the distributed failsafe mode lock.
func SetFailsafeMode(state *structs.ScalingState, config *structs.Config,
	enabled bool) error {

	switch enabled {
	case true:
		// Suppress logging output if we're being called from the CLI tools.
		if !state.FailsafeModeAdmin {
			logging.Warning("core/failsafe: the autoscaler has been placed in " +
				"failsafe mode. No scaling evaluations or operations will be " +
				"permitted from any running copies of the daemon.")
		}

	case false:
		if !state.FailsafeModeAdmin {
			logging.Info("core/failsafe: exiting failsafe mode")
		}
	}

	// Set the failsafe mode lock state in the state tracking object.
	state.FailsafeMode = enabled

	// Attempt to update the persistent state tracking information.
	statePath := config.ConsulKeyRoot + "/state"
	if err := config.ConsulClient.PersistState(statePath, state); err != nil {
		return fmt.Errorf("core/failsafe: an attempt to update the persistent "+
			"state tracking information failed: %v", err)
	}

	return nil
}
