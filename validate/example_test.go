package validate_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/amp-labs/amp-tablecheck/logger"
	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/amp-labs/amp-tablecheck/validate"
)

func ExampleValidate() {
	ctx := logger.WithMuted(context.Background(), true)

	s := schema.MustNew(map[string]schema.ColumnRule{
		"age": {ExpectedType: schema.TypeInteger, MinValue: 0, MaxValue: 120},
	})
	frame := table.MustFrame(table.Col("age", 25, -1, 150, nil))

	report, err := validate.Validate(ctx, frame, s)
	if err != nil {
		panic(err)
	}

	fmt.Println(report.IsValid())
	fmt.Println(report.Summary())
	// Output:
	// false
	// - Column 'age': [min_value] values must be >= 0 (Sample: [-1])
	// - Column 'age': [max_value] values must be <= 120 (Sample: [150])
}

func ExampleWithRaiseOnError() {
	ctx := logger.WithMuted(context.Background(), true)

	s := schema.MustNew(map[string]schema.ColumnRule{
		"email": {Required: true},
	})

	_, err := validate.Validate(ctx, table.MustFrame(table.Col("id", 1)), s, validate.WithRaiseOnError(true))

	fmt.Println(errors.Is(err, validate.ErrValidationFailed))
	fmt.Println(err)
	// Output:
	// true
	// data validation failed:
	// - Column 'email': [required_column] required column 'email' not found
}
