/*
Copyright The Ephemeral Acceleration Job Operator Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package k8sclient

import (
	corev1 "k8s.io/api/core/v1"
)

// ContainerState is a flattened summary of one container's state.
type ContainerState struct {
	Name         string
	Ready        bool
	Waiting      string
	Terminated   bool
	ExitCode     int32
	RestartCount int32
}

// PodStatusProjection is the flattened view of a pod's status the
// reconciler consumes. It never holds a reference into the live pod object.
type PodStatusProjection struct {
	Phase           corev1.PodPhase
	Ready           bool
	ContainerStates []ContainerState
}

// ProjectPodStatus flattens a pod object into the shape the reconciler
// branches on.
func ProjectPodStatus(pod *corev1.Pod) PodStatusProjection {
	projection := PodStatusProjection{
		Phase: pod.Status.Phase,
	}

	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady && condition.Status == corev1.ConditionTrue {
			projection.Ready = true
		}
	}

	for _, cs := range pod.Status.ContainerStatuses {
		state := ContainerState{
			Name:         cs.Name,
			Ready:        cs.Ready,
			RestartCount: cs.RestartCount,
		}
		switch {
		case cs.State.Waiting != nil:
			state.Waiting = cs.State.Waiting.Reason
		case cs.State.Terminated != nil:
			state.Terminated = true
			state.ExitCode = cs.State.Terminated.ExitCode
		}
		projection.ContainerStates = append(projection.ContainerStates, state)
	}

	return projection
}
