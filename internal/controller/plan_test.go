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
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apiv1alpha1 "github.com/yourdomain/ephemeral-gpu-job-operator/api/v1alpha1"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/k8sclient"
)

var _ = Describe("planPending", func() {
	It("ensures both children and records startedAt/podName", func() {
		now := metav1.NewTime(time.Now())
		plan := planPending(now, apiv1alpha1.EphemeralAccelerationJobStatus{}, "ephemeralaccelerationjob-j1")

		Expect(plan.EnsurePVC).To(BeTrue())
		Expect(plan.PodAction).To(Equal(podDecisionEnsure))
		Expect(plan.NewStatus.Phase).To(Equal(apiv1alpha1.JobPhaseRunning))
		Expect(plan.NewStatus.PodName).To(Equal("ephemeralaccelerationjob-j1"))
		Expect(plan.NewStatus.StartedAt).ToNot(BeNil())
	})
})

var _ = Describe("planRunning", func() {
	status := apiv1alpha1.EphemeralAccelerationJobStatus{Phase: apiv1alpha1.JobPhaseRunning, PodName: "p1"}
	now := metav1.NewTime(time.Now())

	It("recreates a pod that disappeared mid-run and keeps phase Running", func() {
		plan := planRunning(now, status, false, k8sclient.PodStatusProjection{}, "/artifacts/output.json", 0)
		Expect(plan.PodAction).To(Equal(podDecisionEnsure))
		Expect(plan.NewStatus.Phase).To(Equal(apiv1alpha1.JobPhaseRunning))
	})

	It("deletes the pod on success when pod-TTL is zero", func() {
		plan := planRunning(now, status, true, k8sclient.PodStatusProjection{Phase: corev1.PodSucceeded}, "/artifacts/output.json", 0)
		Expect(plan.PodAction).To(Equal(podDecisionDeleteOnSuccess))
		Expect(plan.NewStatus.Phase).To(Equal(apiv1alpha1.JobPhaseSucceeded))
		Expect(plan.NewStatus.FinishedAt).ToNot(BeNil())
	})

	It("finalizes the job as Succeeded but retains the pod when pod-TTL is positive", func() {
		plan := planRunning(now, status, true, k8sclient.PodStatusProjection{Phase: corev1.PodSucceeded}, "/artifacts/output.json", 300)
		Expect(plan.PodAction).To(Equal(podDecisionNone))
		Expect(plan.NewStatus.Phase).To(Equal(apiv1alpha1.JobPhaseSucceeded))
		Expect(plan.NewStatus.FinishedAt).ToNot(BeNil())
		Expect(plan.NewStatus.ArtifactPath).To(Equal("/artifacts/output.json"))
	})

	It("fetches logs and deletes the pod on failure", func() {
		plan := planRunning(now, status, true, k8sclient.PodStatusProjection{Phase: corev1.PodFailed}, "/artifacts/output.json", 0)
		Expect(plan.PodAction).To(Equal(podDecisionFetchLogsAndDelete))
	})

	It("only updates the message for any other observed pod phase", func() {
		plan := planRunning(now, status, true, k8sclient.PodStatusProjection{Phase: corev1.PodPending}, "/artifacts/output.json", 0)
		Expect(plan.PodAction).To(Equal(podDecisionNone))
		Expect(plan.NewStatus.Phase).To(Equal(apiv1alpha1.JobPhaseRunning))
		Expect(plan.NewStatus.Message).To(ContainSubstring("Pending"))
	})
})

var _ = Describe("planTerminal", func() {
	It("deletes the volume claim once the TTL has elapsed", func() {
		Expect(planTerminal(true).DeletePVC).To(BeTrue())
	})

	It("leaves the volume claim alone before the TTL elapses", func() {
		Expect(planTerminal(false).DeletePVC).To(BeFalse())
	})
})

var _ = Describe("finalizeFailed", func() {
	now := metav1.NewTime(time.Now())

	It("records finishedAt and a truncated log tail on failure", func() {
		status := finalizeFailed(now, apiv1alpha1.EphemeralAccelerationJobStatus{}, "CUDA not available! GPU is required for this job.")
		Expect(status.Phase).To(Equal(apiv1alpha1.JobPhaseFailed))
		Expect(status.FinishedAt).ToNot(BeNil())
		Expect(status.Message).To(HaveSuffix("CUDA not available! GPU is required for this job."))
	})
})
