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

// Package configuration contains the operator-wide defaults, read from
// environment variables. Usually the rest of the operator uses the
// package-level Current value.
package configuration

import (
	"os"
	"strconv"
	"time"
)

// Data is the struct containing the configuration of the operator.
type Data struct {
	// DefaultImage is the inference container image used when a job's
	// spec omits one.
	DefaultImage string

	// DefaultStorageClass is the storage class used when a job's spec
	// omits one.
	DefaultStorageClass string

	// DefaultPVCSize is the artifact volume size used when a job's spec
	// omits one.
	DefaultPVCSize string

	// DefaultTTLSecondsAfterFinished is the pod-TTL used when a job's
	// spec omits one.
	DefaultTTLSecondsAfterFinished int32

	// DefaultPVCTTLSecondsAfterFinished is the volume-TTL used when a
	// job's spec omits one.
	DefaultPVCTTLSecondsAfterFinished int32

	// ReconcileInterval is the floor on how often the janitor re-enters
	// the reconciler for every live job, independent of event delivery.
	ReconcileInterval time.Duration

	// JanitorSchedule is an optional cron expression pinning an
	// additional maintenance sweep window, on top of the plain ticker.
	// Empty disables it.
	JanitorSchedule string
}

// Current is the configuration used by the operator.
var Current = NewConfiguration()

func newDefaultConfig() *Data {
	return &Data{
		DefaultImage:                      "gpu-job-inference:latest",
		DefaultStorageClass:               "local-path",
		DefaultPVCSize:                    "1Gi",
		DefaultTTLSecondsAfterFinished:    0,
		DefaultPVCTTLSecondsAfterFinished: 3600,
		ReconcileInterval:                 30 * time.Second,
		JanitorSchedule:                   "",
	}
}

// NewConfiguration builds a configuration by reading the environment,
// falling back to the documented defaults for anything unset or
// unparsable.
func NewConfiguration() *Data {
	config := newDefaultConfig()

	if v := os.Getenv("DEFAULT_IMAGE"); v != "" {
		config.DefaultImage = v
	}
	if v := os.Getenv("DEFAULT_STORAGE_CLASS"); v != "" {
		config.DefaultStorageClass = v
	}
	if v := os.Getenv("DEFAULT_PVC_SIZE"); v != "" {
		config.DefaultPVCSize = v
	}
	if v := os.Getenv("DEFAULT_TTL_SECONDS_AFTER_FINISHED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			config.DefaultTTLSecondsAfterFinished = int32(n)
		}
	}
	if v := os.Getenv("DEFAULT_PVC_TTL_SECONDS_AFTER_FINISHED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			config.DefaultPVCTTLSecondsAfterFinished = int32(n)
		}
	}
	if v := os.Getenv("RECONCILE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.ReconcileInterval = d
		}
	}
	if v := os.Getenv("JANITOR_SCHEDULE"); v != "" {
		config.JanitorSchedule = v
	}

	return config
}
