package cmd

import (
	"errors"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/marcus/bastion/internal/form"
	"github.com/marcus/bastion/internal/models"
)

// flagName converts a field name to its flag: orgDomain -> org-domain.
func flagName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// addFieldFlags registers one string flag per catalog field.
func addFieldFlags(cmd *cobra.Command, c *form.Catalog) {
	for _, f := range c.Fields {
		usage := f.Label
		if len(f.Options) > 0 {
			usage += " (" + strings.Join(f.Options, ", ") + ")"
		}
		if f.Kind == form.KindDate {
			usage += " (YYYY-MM-DD)"
		}
		if f.Required {
			usage += " [required]"
		}
		cmd.Flags().String(flagName(f.Name), "", usage)
	}
}

// applyFieldFlags copies every flag the user set into the controller.
// It reports whether any was set.
func applyFieldFlags(cmd *cobra.Command, c *form.Controller) bool {
	changed := false
	for _, f := range c.Catalog().Fields {
		name := flagName(f.Name)
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, _ := cmd.Flags().GetString(name)
		if f.Kind == form.KindNumber {
			c.Set(f.Name, form.ParseNumber(v))
		} else {
			c.Set(f.Name, v)
		}
		changed = true
	}
	return changed
}

// submitWizard runs the controller's submission synchronously and records
// the attempt. Validation failures name the flag to fix and are not
// recorded, since no request was sent.
func submitWizard(cmd *cobra.Command, c *form.Controller, action, entity, entityID string) (any, error) {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	o := c.Submit(ctx)
	if o.Err != nil {
		var ve *form.ValidationError
		if errors.As(o.Err, &ve) {
			return nil, fail("invalid", errors.New(c.Error()+" (--"+flagName(ve.Field)+")"))
		}
		logger.Debug("submit failed", "action", action, "err", o.Err)
		recordActivity(action, entity, entityID, o.Err, c.Error())
		return nil, fail("request_failed", errors.New(c.Error()))
	}

	switch p := o.Payload.(type) {
	case *models.Organization:
		entityID = p.ClientName
	case *models.Assessment:
		entityID = p.AssessmentID
	}
	recordActivity(action, entity, entityID, nil, c.Success())
	return o.Payload, nil
}
