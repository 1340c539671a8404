package model_test

import (
	"testing"

	"github.com/goliatone/go-contactform/pkg/model"
)

func TestDecoratorFunc_WorksOnCopy(t *testing.T) {
	form := model.Contact()
	decorator := model.DecoratorFunc(func(fm *model.FormModel) error {
		for idx := range fm.Fields {
			if fm.Fields[idx].Name == model.FieldCompany {
				fm.Fields[idx].Placeholder = "株式会社サンプル"
			}
		}
		return nil
	})

	if err := decorator.Decorate(&form); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	field, ok := form.Field(model.FieldCompany)
	if !ok || field.Placeholder != "株式会社サンプル" {
		t.Fatalf("decorator did not apply, got %+v", field)
	}

	bundled, _ := model.Contact().Field(model.FieldCompany)
	if bundled.Placeholder == "株式会社サンプル" {
		t.Fatalf("decorating a copy must not change the bundled definition")
	}
}
