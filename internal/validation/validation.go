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

// Package validation holds the structural checks applied to an
// EphemeralAccelerationJobSpec before the reconciler acts on it.
// Validation failures are permanent: the caller must not retry them, only
// a spec edit re-enters reconciliation.
package validation

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"

	apiv1alpha1 "github.com/yourdomain/ephemeral-gpu-job-operator/api/v1alpha1"
)

var validModels = map[apiv1alpha1.ModelName]bool{
	apiv1alpha1.ModelResNet50:         true,
	apiv1alpha1.ModelMobileNetV3Small: true,
}

// Validate runs the structural checks on spec described in spec.md §4.1.
// A non-nil error is permanent: it must not be retried by the caller.
func Validate(spec apiv1alpha1.EphemeralAccelerationJobSpec) error {
	var errs field.ErrorList

	if !validModels[spec.Model] {
		errs = append(errs, field.NotSupported(
			field.NewPath("spec", "model"),
			spec.Model,
			[]string{string(apiv1alpha1.ModelResNet50), string(apiv1alpha1.ModelMobileNetV3Small)},
		))
	}

	if spec.Input.Path == "" {
		errs = append(errs, field.Required(field.NewPath("spec", "input", "path"), "must specify an input path"))
	}

	if spec.Output.Path == "" {
		errs = append(errs, field.Required(field.NewPath("spec", "output", "path"), "must specify an output path"))
	}

	if spec.Resources.GPU <= 0 {
		errs = append(errs, field.Invalid(
			field.NewPath("spec", "resources", "gpu"),
			spec.Resources.GPU,
			"must be a positive integer",
		))
	}

	if spec.TTLSecondsAfterFinished != nil && *spec.TTLSecondsAfterFinished < 0 {
		errs = append(errs, field.Invalid(
			field.NewPath("spec", "ttlSecondsAfterFinished"),
			*spec.TTLSecondsAfterFinished,
			"must not be negative",
		))
	}

	if spec.PVCTTLSecondsAfterFinished != nil && *spec.PVCTTLSecondsAfterFinished < 0 {
		errs = append(errs, field.Invalid(
			field.NewPath("spec", "pvcTTLSecondsAfterFinished"),
			*spec.PVCTTLSecondsAfterFinished,
			"must not be negative",
		))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid EphemeralAccelerationJob spec: %w", errs.ToAggregate())
}
