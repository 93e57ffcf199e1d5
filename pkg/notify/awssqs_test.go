package notify

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
}

func (f *fakeSQSClient) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestAWSSQSSenderAttributes(t *testing.T) {
	cases := []struct {
		name        string
		evt         Event
		wantKeyword bool
	}{
		{
			name:        "alert carries keyword",
			evt:         Event{Kind: KindAlert, Keyword: "education grant", Matches: 1},
			wantKeyword: true,
		},
		{
			name:        "digest omits keyword",
			evt:         Event{Kind: KindDigest, Matches: 7},
			wantKeyword: false,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client := &fakeSQSClient{}
			sender := &awsSQSSender{
				queueURL: "https://sqs.eu-west-1.amazonaws.com/123456789012/news-alerts",
				client:   client,
				log:      nopLogger{},
			}

			if err := sender.Send(context.Background(), c.evt); err != nil {
				t.Fatalf("Send: %v", err)
			}

			attrs := client.input.MessageAttributes
			if got := aws.ToString(attrs["kind"].StringValue); got != c.evt.Kind {
				t.Errorf("kind attribute = %q; want %q", got, c.evt.Kind)
			}
			keyword, present := attrs["keyword"]
			if present != c.wantKeyword {
				t.Fatalf("keyword attribute present = %v; want %v", present, c.wantKeyword)
			}
			if c.wantKeyword && aws.ToString(keyword.StringValue) != c.evt.Keyword {
				t.Errorf("keyword attribute = %q; want %q", aws.ToString(keyword.StringValue), c.evt.Keyword)
			}
			// SQS rejects attributes with empty values.
			for name, attr := range attrs {
				if aws.ToString(attr.StringValue) == "" {
					t.Errorf("attribute %q has an empty value", name)
				}
			}
		})
	}
}
