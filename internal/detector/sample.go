package detector

// SampleEmail is a typical credential phishing message, served by the sample
// endpoint and used as a smoke test for the rule set.
const SampleEmail = `From: "PayPal Support" <support@paypa1.com>
Subject: URGENT! Verify your account NOW!

Dear User,

Your PayPal account has been flagged due to unusual activity.
Your account will be SUSPENDED if you don't verify immediately!

CLICK HERE to verify: http://bit.ly/paypal-verify-now

We also detected a login attempt from an unknown device.
Update your security information NOW!

Best regards,
PayPal Security Team

Attachment: verify-account.exe`
