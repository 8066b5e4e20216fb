package kafka

import (
	"github.com/IBM/sarama"
)

// InitKafkaProducer builds the synchronous producer used for the
// farm-events analytics topic.
func InitKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner // Events for one farm stay on one partition
	config.Version = sarama.V2_0_0_0
	config.ClientID = "farm-service"
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return producer, nil
}
