// Package validate checks a table against a schema and reports every
// violation it finds.
//
// A run applies the checks in a fixed order: required columns first, then
// per column the type, nullability, uniqueness, string, range, allowed value
// and custom function checks, and finally the whole-table duplicate row
// check. Within a check, columns are visited in the schema's natural order,
// so two runs over the same input produce identical reports.
//
// Violations are data, not errors. Validate only returns an error for
// unusable arguments, a cancelled context, or when WithRaiseOnError is set
// and the report contains at least one error-severity violation. In the last
// case the report is returned alongside a *FailedError.
//
// Example:
//
//	s := schema.MustNew(map[string]schema.ColumnRule{
//	    "age": {ExpectedType: schema.TypeInteger, MinValue: 0, MaxValue: 120},
//	})
//
//	report, err := validate.Validate(ctx, frame, s)
//	if err != nil {
//	    return err
//	}
//
//	if !report.IsValid() {
//	    fmt.Println(report.Summary())
//	}
package validate
