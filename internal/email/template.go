package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// OTPSubject is the subject line of every activation email
const OTPSubject = "Your OTP"

// otpMessage is a rendered activation email
type otpMessage struct {
	Subject string
	Text    string
	HTML    string
}

const otpHTMLTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background-color: #4F46E5;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px 5px 0 0;
        }
        .content {
            background-color: #f9f9f9;
            padding: 30px;
            border-radius: 0 0 5px 5px;
        }
        .code {
            font-size: 32px;
            font-weight: bold;
            letter-spacing: 8px;
            color: #4F46E5;
            margin: 20px 0;
        }
        .footer {
            margin-top: 30px;
            font-size: 12px;
            color: #666;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Seeran Grades</h1>
    </div>
    <div class="content">
        <h2>Activate your account</h2>
        <p>Your OTP is</p>
        <p class="code">{{.Code}}</p>
        <p>Enter it on the activation page to continue setting your password.</p>
        <p style="margin-top: 30px;">If you did not request this code, you can safely ignore this email.</p>
    </div>
    <div class="footer">
        <p>This code expires in {{.Minutes}} minutes.</p>
    </div>
</body>
</html>
`

var otpHTML = template.Must(template.New("otp").Parse(otpHTMLTemplate))

func renderOTP(code string, minutes int) (*otpMessage, error) {
	var buf bytes.Buffer
	data := struct {
		Code    string
		Minutes int
	}{
		Code:    code,
		Minutes: minutes,
	}

	if err := otpHTML.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	return &otpMessage{
		Subject: OTPSubject,
		Text:    "Your OTP is " + code,
		HTML:    buf.String(),
	}, nil
}
