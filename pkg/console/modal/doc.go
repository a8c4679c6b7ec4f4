// Package modal builds the console's dialogs from stacked sections.
//
// A Modal renders its sections top to bottom and records the focusable
// regions each one reports, so Tab order always follows what is drawn.
// Esc returns ActionCancel; Enter on a focused button or list item returns
// that element's action ID.
//
//	md := modal.New("Delete organization", modal.WithVariant(modal.VariantDanger)).
//	    AddSection(modal.Text("Delete acme? This cannot be undone.")).
//	    AddSection(modal.Spacer()).
//	    AddSection(modal.Buttons(
//	        modal.Btn(" Delete ", "delete", modal.BtnDanger()),
//	        modal.Btn(" Cancel ", modal.ActionCancel),
//	    ))
//
//	// View
//	overlay := md.Render(width, height)
//
//	// Update
//	switch action, cmd := md.HandleKey(msg); action {
//	case "delete":
//	    return deleteOrg("acme")
//	case modal.ActionCancel:
//	    return closeModal()
//	}
//
// Sections: Text, Spacer, Buttons, KeyValue, List (optionally filtered by
// typing, see WithFilter), When for conditional content and Custom for
// anything else.
//
// Modal options: WithWidth (default 50), WithVariant for the accent color,
// WithHints to toggle the key hint line and WithPrimaryAction for the action
// Enter triggers when nothing focused claims it.
package modal
