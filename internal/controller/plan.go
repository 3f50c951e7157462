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

package controller

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	apiv1alpha1 "github.com/yourdomain/ephemeral-gpu-job-operator/api/v1alpha1"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/k8sclient"
)

// podDecision is what the reconciler must do to the compute pod after
// observing its projected status. It never carries the log tail itself:
// fetching logs is a cluster call, kept out of this pure step.
type podDecision int

const (
	// podDecisionNone means the pod needs no action this tick.
	podDecisionNone podDecision = iota
	// podDecisionEnsure means the pod must be (re)created.
	podDecisionEnsure
	// podDecisionDeleteOnSuccess means the pod succeeded and pod-TTL is
	// zero, so it must be deleted once the success is recorded.
	podDecisionDeleteOnSuccess
	// podDecisionFetchLogsAndDelete means the pod failed: its log tail
	// must be fetched before the status patch, and the pod is always
	// deleted regardless of pod-TTL.
	podDecisionFetchLogsAndDelete
)

// transitionPlan is the outcome of planning one reconcile tick against the
// observed (spec, status, pod). It names every side effect the reconciler
// must perform and the status the job should converge to. The reconciler
// branches on PodAction and DeletePVC; whether to patch status it decides
// by comparing the final status with the observed one. For a failed pod,
// StatusDiff is true while NewStatus still equals the observed status: the
// change is made afterwards by finalizeFailed.
type transitionPlan struct {
	NewStatus  apiv1alpha1.EphemeralAccelerationJobStatus
	EnsurePVC  bool
	PodAction  podDecision
	DeletePVC  bool
	StatusDiff bool // true when the tick changes the job's status
}

// planPending handles the Pending -> Running transition. It always
// ensures both children exist and records startedAt/podName.
func planPending(now metav1.Time, status apiv1alpha1.EphemeralAccelerationJobStatus, podName string) transitionPlan {
	next := status
	next.SetAsRunning(podName, now)
	next.Message = "pod created, awaiting completion"
	return transitionPlan{
		NewStatus:  next,
		EnsurePVC:  true,
		PodAction:  podDecisionEnsure,
		StatusDiff: true,
	}
}

// planRunning handles every Running-phase tick: a missing pod is
// recreated, a terminal pod's phase is recorded, and any other observed
// phase only updates the diagnostic message. A succeeded pod always
// finalizes the job's status to Succeeded, regardless of pod-TTL; pod-TTL
// only gates whether the pod itself is deleted this tick, since a positive
// pod-TTL means "retain the pod", never "delay marking the job done".
func planRunning(
	now metav1.Time,
	status apiv1alpha1.EphemeralAccelerationJobStatus,
	podFound bool,
	pod k8sclient.PodStatusProjection,
	artifactPath string,
	podTTLSeconds int32,
) transitionPlan {
	next := status

	if !podFound {
		next.Message = "compute pod not found, recreating"
		return transitionPlan{
			NewStatus:  next,
			EnsurePVC:  true,
			PodAction:  podDecisionEnsure,
			StatusDiff: next.Message != status.Message,
		}
	}

	switch pod.Phase {
	case corev1.PodSucceeded:
		next.SetAsSucceeded(artifactPath, now)
		next.Message = "job completed successfully"
		action := podDecisionNone
		if podTTLSeconds == 0 {
			action = podDecisionDeleteOnSuccess
		}
		return transitionPlan{
			NewStatus:  next,
			PodAction:  action,
			StatusDiff: true,
			EnsurePVC:  false,
		}
	case corev1.PodFailed:
		return transitionPlan{
			NewStatus:  next,
			PodAction:  podDecisionFetchLogsAndDelete,
			StatusDiff: true,
		}
	default:
		message := fmt.Sprintf("compute pod observed in phase %s", pod.Phase)
		next.Message = message
		return transitionPlan{
			NewStatus:  next,
			PodAction:  podDecisionNone,
			StatusDiff: message != status.Message,
		}
	}
}

// finalizeFailed completes the Running -> Failed transition once the log
// tail has been fetched.
func finalizeFailed(now metav1.Time, status apiv1alpha1.EphemeralAccelerationJobStatus, logTail string) apiv1alpha1.EphemeralAccelerationJobStatus {
	next := status
	next.SetAsFailed(logTail, now)
	return next
}

// planTerminal handles a job already in Succeeded or Failed: it decides,
// purely from the elapsed time since finishedAt, whether the volume claim
// should be reclaimed this tick. The Open Question in this operator's
// design notes is resolved here: a positive pod-TTL never drives
// automatic delayed pod reclamation, so only the volume claim is ever
// considered once a job is terminal.
func planTerminal(volumeTTLHasElapsed bool) transitionPlan {
	return transitionPlan{
		DeletePVC: volumeTTLHasElapsed,
	}
}
