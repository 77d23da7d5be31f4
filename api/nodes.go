package api

import "time"

// Nodes is used to reach the node lifecycle endpoints.
type Nodes struct {
	client *Client
}

// Nodes returns a handle on the node lifecycle endpoints.
func (c *Client) Nodes() *Nodes {
	return &Nodes{client: c}
}

// nodeTerminated is the request body for the node-terminated endpoint.
type nodeTerminated struct {
	CreationTime time.Time `json:"creation_time"`
	InstanceType string    `json:"instance_type"`
}

// Terminated reports a node termination to the running agent so the active
// scaling policy can account for the instance's lifetime.
func (n *Nodes) Terminated(creationTime time.Time, instanceType string) error {
	return n.client.write("/v1/node-terminated", &nodeTerminated{
		CreationTime: creationTime,
		InstanceType: instanceType,
	})
}
