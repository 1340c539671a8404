// Package shell renders the page chrome around the contact form: the document
// title and description, the site header linking home, the main region and the
// static footer. Layout is generated from layout.templ, so any templ.Component
// can be placed inside it. Run `templ generate` after editing the template.
//
//	page := shell.Layout(shell.Props{
//		Title:       form.Title,
//		Description: form.Description,
//	}, templ.Raw(string(fragment)))
//	err := page.Render(ctx, w)
package shell
