package aws

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/autoscaling"
)

// describeScalingGroup returns the current configuration of a node group
// autoscaling group.
func describeScalingGroup(asgName string,
	svc *autoscaling.AutoScaling) (
	asg *autoscaling.DescribeAutoScalingGroupsOutput, err error) {

	params := &autoscaling.DescribeAutoScalingGroupsInput{
		AutoScalingGroupNames: []*string{
			aws.String(asgName),
		},
	}

	resp, err := svc.DescribeAutoScalingGroups(params)
	if err != nil {
		return nil, err
	}

	// If we failed to get exactly one ASG, raise an error.
	if len(resp.AutoScalingGroups) != 1 {
		return nil, fmt.Errorf("the attempt to retrieve the autoscaling group "+
			"configuration of %v expected exactly one result got %v", asgName,
			len(resp.AutoScalingGroups))
	}

	return resp, nil
}
