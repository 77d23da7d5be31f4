package aws

import (
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/autoscaling"
	"github.com/aws/aws-sdk-go/service/ec2"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

// AwsScalingProvider implements the ScalingProvider interface and is capable
// of performing scaling operations against node groups backed by AWS
// autoscaling groups.
//
// The provider verifies each capacity change it requests and places a group
// under a local cooldown when a change fails or cannot be confirmed.
type AwsScalingProvider struct {
	asgService *autoscaling.AutoScaling
	ec2Service *ec2.EC2

	scaleTimeout time.Duration
	cooldown     time.Duration

	// onTermination receives every instance removal discovered during
	// refresh. May be nil.
	onTermination structs.TerminationHandler

	instanceLock sync.Mutex
	instances    map[string]map[string]instanceRecord
}

// instanceRecord tracks the identity of one running instance so that its
// disappearance can be reported for cost accounting.
type instanceRecord struct {
	launchTime   time.Time
	instanceType string
}

// NewAwsScalingProvider is a factory function that generates a new instance
// of the AwsScalingProvider.
func NewAwsScalingProvider(config *structs.Config,
	handler structs.TerminationHandler) (structs.ScalingProvider, error) {

	if config.Region == "" {
		return nil, fmt.Errorf("aws_region is required for the aws scaling " +
			"provider")
	}

	sess := session.Must(session.NewSession())
	awsConfig := &aws.Config{Region: aws.String(config.Region)}

	return &AwsScalingProvider{
		asgService:    autoscaling.New(sess, awsConfig),
		ec2Service:    ec2.New(sess, awsConfig),
		scaleTimeout:  time.Duration(config.ScaleOperationTimeout) * time.Second,
		cooldown:      time.Duration(config.CooldownPeriod) * time.Second,
		onTermination: handler,
		instances:     make(map[string]map[string]instanceRecord),
	}, nil
}

// Name returns the name of the scaling provider.
func (sp *AwsScalingProvider) Name() string {
	return "aws"
}

// Scale requests the supplied desired capacity for the node group's
// autoscaling group and blocks until the change is confirmed. Failures and
// unconfirmed changes place the group under a local cooldown.
func (sp *AwsScalingProvider) Scale(group *structs.Group, newCapacity int) error {
	if newCapacity > group.MaxSize {
		return fmt.Errorf("requested capacity %v exceeds the max size %v of "+
			"autoscaling group %v", newCapacity, group.MaxSize, group.Name)
	}

	params := &autoscaling.SetDesiredCapacityInput{
		AutoScalingGroupName: aws.String(group.Name),
		DesiredCapacity:      aws.Int64(int64(newCapacity)),
		HonorCooldown:        aws.Bool(false),
	}

	logging.Info("provider/aws: setting desired capacity of autoscaling "+
		"group %v to %v", group.Name, newCapacity)

	if _, err := sp.asgService.SetDesiredCapacity(params); err != nil {
		group.CooldownUntil = time.Now().Add(sp.cooldown)
		return err
	}

	group.DesiredCapacity = newCapacity

	if err := sp.verifyCapacityChange(group, newCapacity); err != nil {
		group.CooldownUntil = time.Now().Add(sp.cooldown)
		return err
	}

	group.ActualCapacity = newCapacity
	return nil
}

// verifyCapacityChange polls the autoscaling group until the requested
// number of instances is in service or the operation deadline passes.
func (sp *AwsScalingProvider) verifyCapacityChange(group *structs.Group,
	capacity int) error {

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	timeout := time.After(sp.scaleTimeout)

	for {
		select {
		case <-timeout:
			logging.Error("provider/aws: timeout reached while waiting for "+
				"autoscaling group %v to reach capacity %v", group.Name, capacity)
			return structs.ErrScaleTimeout

		case <-ticker.C:
			asg, err := describeScalingGroup(group.Name, sp.asgService)
			if err != nil {
				logging.Error("provider/aws: an error occurred while attempting "+
					"to verify the capacity of autoscaling group %v: %v",
					group.Name, err)
				continue
			}

			if inServiceInstances(asg) >= capacity {
				logging.Info("provider/aws: autoscaling group %v reached "+
					"capacity %v", group.Name, capacity)
				return nil
			}
		}
	}
}

// SafetyCheck confirms the autoscaling group is in a stable state before a
// scaling operation is initiated against it. A group whose in-service
// instance count does not match its desired capacity is still converging
// from a previous change.
func (sp *AwsScalingProvider) SafetyCheck(group *structs.Group) bool {
	asg, err := describeScalingGroup(group.Name, sp.asgService)
	if err != nil {
		logging.Error("provider/aws: unable to retrieve the autoscaling group "+
			"configuration of %v to evaluate constraints: %v", group.Name, err)
		return false
	}

	desiredCap := int(*asg.AutoScalingGroups[0].DesiredCapacity)

	if inServiceInstances(asg) != desiredCap {
		logging.Debug("provider/aws: the number of in-service instances in "+
			"autoscaling group %v does not match the desired capacity of %v, "+
			"no scaling action should be permitted", group.Name, desiredCap)
		return false
	}

	return true
}

// Refresh updates the group's capacity fields from the autoscaling group and
// reports instances that have disappeared since the previous refresh.
func (sp *AwsScalingProvider) Refresh(group *structs.Group) error {
	asg, err := describeScalingGroup(group.Name, sp.asgService)
	if err != nil {
		return err
	}

	group.MaxSize = int(*asg.AutoScalingGroups[0].MaxSize)
	group.DesiredCapacity = int(*asg.AutoScalingGroups[0].DesiredCapacity)
	group.ActualCapacity = inServiceInstances(asg)

	running, err := describeRunningInstances(group.Name, sp.ec2Service)
	if err != nil {
		return err
	}

	sp.trackTerminations(group.Name, running)

	return nil
}

// trackTerminations diffs the currently running instances against the
// previous refresh and reports every disappearance to the termination
// handler.
func (sp *AwsScalingProvider) trackTerminations(groupName string,
	running map[string]instanceRecord) {

	sp.instanceLock.Lock()
	defer sp.instanceLock.Unlock()

	previous := sp.instances[groupName]
	sp.instances[groupName] = running

	for instanceID, record := range previous {
		if _, ok := running[instanceID]; ok {
			continue
		}

		logging.Info("provider/aws: instance %v (%v) left autoscaling group "+
			"%v after %v", instanceID, record.instanceType, groupName,
			time.Since(record.launchTime).Round(time.Second))

		if sp.onTermination != nil {
			sp.onTermination(record.launchTime, record.instanceType)
		}
	}
}

// inServiceInstances counts the instances of the first autoscaling group in
// the response that are in service.
func inServiceInstances(asg *autoscaling.DescribeAutoScalingGroupsOutput) int {
	count := 0
	for _, instance := range asg.AutoScalingGroups[0].Instances {
		if *instance.LifecycleState == autoscaling.LifecycleStateInService {
			count++
		}
	}
	return count
}
