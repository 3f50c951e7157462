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
	"context"
	"time"

	"github.com/robfig/cron"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/event"

	apiv1alpha1 "github.com/yourdomain/ephemeral-gpu-job-operator/api/v1alpha1"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/log"
)

// Janitor is the timer driver: it periodically lists every
// EphemeralAccelerationJob, including those already terminal (needed to
// evaluate volume-TTL), and pushes a generic event for each onto Events so
// the reconciler re-enters independent of cluster event delivery.
type Janitor struct {
	Client client.Client
	// Events is read by a source.Channel registered in SetupWithManager.
	Events chan event.GenericEvent
	// Interval is the floor on how often every resource is revisited.
	Interval time.Duration
	// Schedule, when non-empty, is a cron expression pinning an
	// additional maintenance sweep on top of the plain ticker.
	Schedule string
}

// NewJanitor builds a Janitor with a buffered event channel sized for a
// moderate number of concurrently live jobs.
func NewJanitor(cli client.Client, interval time.Duration, schedule string) *Janitor {
	return &Janitor{
		Client:   cli,
		Events:   make(chan event.GenericEvent, 256),
		Interval: interval,
		Schedule: schedule,
	}
}

// Start runs the janitor loop until ctx is cancelled, satisfying
// manager.Runnable. Besides the plain ticker floor, a configured cron
// schedule drives its own extra sweep, independent of the ticker's phase,
// e.g. to pin a maintenance pass to an off-peak window tighter than the
// ticker interval would otherwise guarantee.
func (j *Janitor) Start(ctx context.Context) error {
	contextLogger := log.FromContext(ctx).WithName("janitor")

	var cronSchedule cron.Schedule
	if j.Schedule != "" {
		parsed, err := cron.ParseStandard(j.Schedule)
		if err != nil {
			contextLogger.Error(err, "ignoring invalid janitor schedule", "schedule", j.Schedule)
		} else {
			cronSchedule = parsed
		}
	}

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	var cronTimer *time.Timer
	var cronTimerC <-chan time.Time
	if cronSchedule != nil {
		cronTimer = time.NewTimer(time.Until(cronSchedule.Next(time.Now())))
		defer cronTimer.Stop()
		cronTimerC = cronTimer.C
	}

	for {
		select {
		case <-ctx.Done():
			contextLogger.Info("janitor stopping")
			return nil
		case <-ticker.C:
			j.sweep(ctx, contextLogger)
		case <-cronTimerC:
			contextLogger.Info("running scheduled maintenance sweep", "schedule", j.Schedule)
			j.sweep(ctx, contextLogger)
			cronTimer.Reset(time.Until(cronSchedule.Next(time.Now())))
		}
	}
}

// sweep lists every job and enqueues a reconcile request for each.
func (j *Janitor) sweep(ctx context.Context, contextLogger log.Logger) {
	var jobs apiv1alpha1.EphemeralAccelerationJobList
	if err := j.Client.List(ctx, &jobs); err != nil {
		contextLogger.Error(err, "listing jobs for periodic re-entry")
		return
	}

	contextLogger.Debug("sweeping jobs", "count", len(jobs.Items))
	for i := range jobs.Items {
		job := &jobs.Items[i]
		select {
		case j.Events <- event.GenericEvent{Object: job}:
		case <-ctx.Done():
			return
		}
	}
}
