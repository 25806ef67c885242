package validations

import (
	"context"

	domainAdmin "github.com/AzielCF/az-widget/domains/admin"
	"github.com/AzielCF/az-widget/domains/widget"
	pkgError "github.com/AzielCF/az-widget/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateUpdateConfigRequest(ctx context.Context, request domainAdmin.UpdateConfigRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Phone, validation.Required),
		validation.Field(&request.DefaultMessageTemplate, validation.Required),
		validation.Field(&request.ProductMessageTemplate, validation.Required),
		validation.Field(&request.Position, validation.In(anySlice(widget.AllowedPositions)...)),
		validation.Field(&request.ButtonSize, validation.In(anySlice(widget.AllowedButtonSizes)...)),
		validation.Field(&request.BorderRadius, validation.In(anySlice(widget.AllowedBorderRadius)...)),
		validation.Field(&request.VisiblePageTypes, validation.Each(validation.In(anySlice(widget.AllowedPageTypes)...))),
		validation.Field(&request.VisibleDeviceTypes, validation.Each(validation.In(anySlice(widget.AllowedDeviceTypes)...))),
		validation.Field(&request.WorkingDays, validation.Each(validation.In(anySlice(widget.AllowedWeekdays)...))),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
