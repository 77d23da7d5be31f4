package aws

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
)

// describeRunningInstances returns the identity of every running or pending
// instance associated with the named autoscaling group.
func describeRunningInstances(asgName string,
	svc *ec2.EC2) (map[string]instanceRecord, error) {

	params := &ec2.DescribeInstancesInput{
		Filters: []*ec2.Filter{
			{
				Name: aws.String("tag:aws:autoscaling:groupName"),
				Values: []*string{
					aws.String(asgName),
				},
			},
			{
				Name: aws.String("instance-state-name"),
				Values: []*string{
					aws.String("running"),
					aws.String("pending"),
				},
			},
		},
	}

	instances := make(map[string]instanceRecord)

	err := svc.DescribeInstancesPages(params,
		func(page *ec2.DescribeInstancesOutput, lastPage bool) bool {
			for _, reservation := range page.Reservations {
				for _, instance := range reservation.Instances {
					instances[*instance.InstanceId] = instanceRecord{
						launchTime:   *instance.LaunchTime,
						instanceType: *instance.InstanceType,
					}
				}
			}
			return true
		})
	if err != nil {
		return nil, err
	}

	return instances, nil
}
