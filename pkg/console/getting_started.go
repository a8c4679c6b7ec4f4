package console

import (
	"github.com/marcus/bastion/pkg/console/modal"
)

// createGettingStartedModal builds the welcome modal shown on first launch.
func (m *Model) createGettingStartedModal() *modal.Modal {
	md := modal.New("Welcome to bastion console", modal.WithWidth(65))

	md.AddSection(modal.Text(
		"Manage the organizations you own or provide services for,\n" +
			"raise assessments and run threat profiling."))

	md.AddSection(modal.Spacer())

	md.AddSection(modal.Text(
		"GET STARTED:\n" +
			"  n  new organization      L  new large enterprise\n" +
			"  a  new assessment        p  run threat profiling"))

	md.AddSection(modal.Spacer())

	md.AddSection(modal.Text(
		"IN A WIZARD:\n" +
			"  ctrl+n / ctrl+p  next / previous section\n" +
			"  ctrl+s           submit from any section"))

	md.AddSection(modal.Spacer())

	md.AddSection(modal.Text(
		"KEYBOARD SHORTCUTS:\n" +
			"  Press '?' anytime for full help"))

	md.AddSection(modal.Spacer())

	md.AddSection(modal.Buttons(
		modal.Btn(" Get started ", "close"),
	))

	return md
}
