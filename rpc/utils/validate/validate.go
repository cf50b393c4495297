// Package validate
// @Title  配置校验
// @Description  desc
// @Author  yr  2025/3/14
// @Update  yr  2025/3/14
package validate

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New()
	validate.SetTagName("binding")

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
}

// Struct 校验结构体, 返回翻译后的首个错误
func Struct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Translate 翻译校验错误
func Translate(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range errs {
			return e.Translate(trans)
		}
	}
	return err.Error()
}
