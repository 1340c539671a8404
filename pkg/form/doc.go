// Package form holds the Form State of the contact form and its submission
// lifecycle.
//
// A State starts empty. Every Set, Toggle, SetSelection or Blur revalidates
// the full schema, so Errors always reflects the current values. Submit moves
// idle → submitting → idle: it validates, hands a snapshot to the caller's
// Sink exactly once and resets the fields.
//
//	st := form.New(nil)
//	_ = st.Set(model.FieldEmail, "taro@acme.com")
//	snapshot, err := st.Submit(ctx, form.EchoSink(os.Stdout))
package form
