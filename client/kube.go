package client

import (
	"context"
	"time"

	metrics "github.com/armon/go-metrics"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

// gpuResourceName is the extended resource node vendors expose GPUs under.
const gpuResourceName = "nvidia.com/gpu"

// kubeClient wraps the Kubernetes API client and translates its objects into
// the core data model. Kubernetes types never cross this boundary.
type kubeClient struct {
	kube kubernetes.Interface
}

// NewKubeClient constructs a Kubernetes client from the supplied kubeconfig
// path, falling back to the in-cluster service account when the path is
// empty.
func NewKubeClient(kubeconfig string) (structs.KubeClient, error) {
	var (
		config *rest.Config
		err    error
	)

	if kubeconfig != "" {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	} else {
		config, err = rest.InClusterConfig()
	}
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, err
	}

	return &kubeClient{kube: clientset}, nil
}

// NewKubeClientFromInterface wraps an existing Kubernetes client. Used by the
// tests to inject a fake clientset.
func NewKubeClientFromInterface(kube kubernetes.Interface) structs.KubeClient {
	return &kubeClient{kube: kube}
}

// PendingPods lists the pods the scheduler has marked unschedulable and
// groups them by their selectors hash.
func (c *kubeClient) PendingPods() (structs.PendingPods, error) {
	defer metrics.MeasureSince([]string{"kube", "pending_pods"}, time.Now())

	podList, err := c.kube.CoreV1().Pods(metav1.NamespaceAll).List(
		context.Background(), metav1.ListOptions{
			FieldSelector: "status.phase=Pending",
		})
	if err != nil {
		return nil, err
	}

	pendingPods := make(structs.PendingPods)

	for i := range podList.Items {
		pod := &podList.Items[i]

		if !isUnschedulable(pod) {
			continue
		}

		translated := structs.NewPod(pod.Name, pod.Namespace,
			podResources(pod), pod.Spec.NodeSelector,
			podTolerations(pod))

		pendingPods[translated.SelectorsHash] = append(
			pendingPods[translated.SelectorsHash], translated)
	}

	logging.Debug("client/kube: found %v unschedulable pods across %v "+
		"group keys", pendingPods.Count(), len(pendingPods))

	return pendingPods, nil
}

// isUnschedulable reports whether the scheduler has given up on the pod, as
// opposed to it merely being young.
func isUnschedulable(pod *corev1.Pod) bool {
	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodScheduled &&
			condition.Status == corev1.ConditionFalse &&
			condition.Reason == corev1.PodReasonUnschedulable {
			return true
		}
	}
	return false
}

// podResources aggregates the resource requests of every container in the
// pod into one core resource vector.
func podResources(pod *corev1.Pod) structs.Resource {
	resources := structs.Resource{Pods: 1}

	for _, container := range pod.Spec.Containers {
		requests := container.Resources.Requests

		if cpu, ok := requests[corev1.ResourceCPU]; ok {
			resources.CPUMillis += cpu.MilliValue()
		}
		if memory, ok := requests[corev1.ResourceMemory]; ok {
			resources.MemoryMB += memory.Value() / 1024 / 1024
		}
		if gpu, ok := container.Resources.Limits[gpuResourceName]; ok {
			resources.GPU += gpu.Value()
		}
	}

	return resources
}

// podTolerations maps the pod's tolerations into core toleration values.
func podTolerations(pod *corev1.Pod) []structs.Toleration {
	var tolerations []structs.Toleration

	for _, toleration := range pod.Spec.Tolerations {
		tolerations = append(tolerations, structs.Toleration{
			Key:      toleration.Key,
			Operator: string(toleration.Operator),
			Value:    toleration.Value,
			Effect:   string(toleration.Effect),
		})
	}

	return tolerations
}
