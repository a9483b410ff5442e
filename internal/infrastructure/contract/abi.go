package contract

// certificateABI is the fixed method surface of the deployed certificate
// contract. The portal binds this exact version; chain changes invalidate
// the binding's execution context and force a session reload instead of an
// in-place rebind.
const certificateABI = `[
  {
    "name": "mintCertificate",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "recipient", "type": "address"},
      {"name": "studentName", "type": "string"},
      {"name": "degree", "type": "string"},
      {"name": "university", "type": "string"},
      {"name": "uri", "type": "string"}
    ],
    "outputs": [{"name": "tokenId", "type": "uint256"}]
  },
  {
    "name": "verifyCertificate",
    "type": "function",
    "stateMutability": "view",
    "inputs": [{"name": "tokenId", "type": "uint256"}],
    "outputs": [
      {"name": "studentName", "type": "string"},
      {"name": "degree", "type": "string"},
      {"name": "university", "type": "string"},
      {"name": "ipfsHash", "type": "string"}
    ]
  },
  {
    "name": "balanceOf",
    "type": "function",
    "stateMutability": "view",
    "inputs": [{"name": "owner", "type": "address"}],
    "outputs": [{"name": "balance", "type": "uint256"}]
  },
  {
    "name": "tokenOfOwnerByIndex",
    "type": "function",
    "stateMutability": "view",
    "inputs": [
      {"name": "owner", "type": "address"},
      {"name": "index", "type": "uint256"}
    ],
    "outputs": [{"name": "tokenId", "type": "uint256"}]
  },
  {
    "name": "ownerOf",
    "type": "function",
    "stateMutability": "view",
    "inputs": [{"name": "tokenId", "type": "uint256"}],
    "outputs": [{"name": "owner", "type": "address"}]
  },
  {
    "name": "getCertificatesByIssuer",
    "type": "function",
    "stateMutability": "view",
    "inputs": [{"name": "issuer", "type": "address"}],
    "outputs": [{"name": "tokenIds", "type": "uint256[]"}]
  }
]`
